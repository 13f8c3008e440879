package services

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
)

// ===== SESSION REQUESTS =====

type StartSessionRequest struct {
	DeckID           *uint `json:"deck_id" validate:"required,gt=0"`
	PerCardSeconds   *int  `json:"per_card_seconds" validate:"omitempty,gte=1"`
	TotalTimeSeconds *int  `json:"total_time_seconds" validate:"omitempty,gte=1"`
}

type SubmitAnswerRequest struct {
	CardID     *uint   `json:"card_id" validate:"required,gt=0"`
	UserAnswer *string `json:"user_answer" validate:"required"`
	TimeTaken  *int    `json:"time_taken" validate:"omitempty,gte=0"`
}

// SessionAnswer is one answer submitted at completion. Pointer fields let
// validation tell a missing value from a zero one.
type SessionAnswer struct {
	CardID     *uint   `json:"card_id" validate:"required,gt=0"`
	UserAnswer *string `json:"user_answer" validate:"required"`
	IsCorrect  *bool   `json:"is_correct" validate:"required"`
	TimeTaken  *int    `json:"time_taken" validate:"omitempty,gte=0"`
}

type CompleteSessionRequest struct {
	Answers   []SessionAnswer `json:"answers" validate:"dive"`
	StartedAt *string         `json:"started_at"`
}

// UnmarshalJSON accepts either {"answers": [...], "started_at": "..."} or a
// bare answer array.
func (r *CompleteSessionRequest) UnmarshalJSON(data []byte) error {
	var answers []SessionAnswer
	if err := json.Unmarshal(data, &answers); err == nil {
		r.Answers = answers
		return nil
	}

	type plain CompleteSessionRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CompleteSessionRequest(p)
	return nil
}

// ===== SESSION RESPONSES =====

// MatchColumns exposes a match card's sides with the right column shuffled
type MatchColumns struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// TestCard is a card as handed to a test taker. It never carries the answer.
type TestCard struct {
	ID       uint            `json:"id"`
	Question string          `json:"question"`
	Type     models.CardType `json:"qtype"`
	Options  []string        `json:"options,omitempty"`
	Pairs    *MatchColumns   `json:"pairs,omitempty"`
}

type StartSessionResponse struct {
	SessionID        string     `json:"session_id"`
	DeckID           uint       `json:"deck_id"`
	DeckTitle        string     `json:"deck_title"`
	DeckOwner        string     `json:"deck_owner"`
	TotalCards       int        `json:"total_cards"`
	Cards            []TestCard `json:"cards"`
	StartedAt        time.Time  `json:"started_at"`
	PerCardSeconds   int        `json:"per_card_seconds"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	EndsAt           time.Time  `json:"ends_at"`
}

type SubmitAnswerResponse struct {
	CardID        uint   `json:"card_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
}

type SessionResult struct {
	SessionID      string                `json:"session_id"`
	DeckID         uint                  `json:"deck_id"`
	DeckTitle      string                `json:"deck_title"`
	DeckOwner      string                `json:"deck_owner"`
	TotalCards     int                   `json:"total_cards"`
	CorrectAnswers int                   `json:"correct_answers"`
	Accuracy       float64               `json:"accuracy"`
	TotalTime      int                   `json:"total_time"`
	CompletedAt    time.Time             `json:"completed_at"`
	Answers        []models.AnswerRecord `json:"answers"`
}

type SessionSummary struct {
	SessionID      string  `json:"session_id"`
	TotalQuestions int     `json:"total_questions"`
	CorrectCount   int     `json:"correct_count"`
	MistakeCount   int     `json:"mistake_count"`
	ScorePercent   float64 `json:"score_percent"`
}

type RecentTest struct {
	SessionID   string    `json:"session_id"`
	DeckID      uint      `json:"deck_id"`
	DeckTitle   string    `json:"deck_title"`
	Accuracy    float64   `json:"accuracy"`
	TotalTime   int       `json:"total_time"`
	CompletedAt time.Time `json:"completed_at"`
}

type TestStats struct {
	TotalTestsTaken  int          `json:"total_tests_taken"`
	TotalDecksTested int          `json:"total_decks_tested"`
	AverageAccuracy  float64      `json:"average_accuracy"`
	FavoriteSubjects []string     `json:"favorite_subjects"`
	RecentTests      []RecentTest `json:"recent_tests"`
}

type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       uint    `json:"user_id"`
	UserEmail    string  `json:"user_email"`
	BestAccuracy float64 `json:"best_accuracy"`
	TestsTaken   int     `json:"tests_taken"`
	BestTime     int     `json:"best_time"`
}

type SessionHistoryItem struct {
	SessionID      string     `json:"session_id"`
	DeckID         uint       `json:"deck_id"`
	DeckTitle      string     `json:"deck_title"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	TotalCards     int        `json:"total_cards"`
	CorrectAnswers *int       `json:"correct_answers"`
	Accuracy       *float64   `json:"accuracy"`
	TotalTime      *int       `json:"total_time"`
}

type SessionHistoryResponse struct {
	Sessions []SessionHistoryItem `json:"sessions"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	Size     int                  `json:"size"`
}

// ===== DECK & CARD REQUESTS =====

type CreateDeckRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Tags        []string          `json:"tags" validate:"deck_tags"`
	Visibility  models.Visibility `json:"visibility" validate:"omitempty,visibility"`
}

type UpdateDeckRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Tags        []string           `json:"tags" validate:"omitempty,deck_tags"`
	Visibility  *models.Visibility `json:"visibility" validate:"omitempty,visibility"`
}

type DeckListRequest struct {
	Page       int    `form:"page" json:"page" validate:"omitempty,gte=1"`
	Size       int    `form:"size" json:"size" validate:"omitempty,gte=1,lte=100"`
	Search     string `form:"search" json:"search"`
	Tag        string `form:"tag" json:"tag"`
	Visibility string `form:"visibility" json:"visibility" validate:"omitempty,visibility"`
}

type CreateCardRequest struct {
	Question string             `json:"question" validate:"required,max=2000"`
	Answer   string             `json:"answer" validate:"required,max=1000"`
	Type     models.CardType    `json:"qtype" validate:"required,card_type"`
	Options  []string           `json:"options"`
	Pairs    []models.MatchPair `json:"pairs"`
}

type UpdateCardRequest struct {
	Question *string            `json:"question" validate:"omitempty,min=1,max=2000"`
	Answer   *string            `json:"answer" validate:"omitempty,min=1,max=1000"`
	Type     *models.CardType   `json:"qtype" validate:"omitempty,card_type"`
	Options  []string           `json:"options"`
	Pairs    []models.MatchPair `json:"pairs"`
}

// ===== DECK & CARD RESPONSES =====

type DeckResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Tags        []string          `json:"tags"`
	Visibility  models.Visibility `json:"visibility"`
	OwnerID     uint              `json:"owner_id"`
	Owner       string            `json:"owner"`
	CardCount   int64             `json:"card_count"`
	LikeCount   int64             `json:"like_count"`
	Liked       bool              `json:"liked"`
	Favorited   bool              `json:"favorited"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type DeckListResponse struct {
	Decks      []*DeckResponse `json:"decks"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalPages int             `json:"total_pages"`
}

type CardResponse struct {
	ID       uint               `json:"id"`
	DeckID   uint               `json:"deck_id"`
	Question string             `json:"question"`
	Answer   string             `json:"answer,omitempty"`
	Type     models.CardType    `json:"qtype"`
	Options  []string           `json:"options,omitempty"`
	Pairs    []models.MatchPair `json:"pairs,omitempty"`
}

type EngagementResponse struct {
	DeckID    uint  `json:"deck_id"`
	Liked     bool  `json:"liked"`
	Favorited bool  `json:"favorited"`
	LikeCount int64 `json:"like_count"`
}

// ===== DASHBOARD =====

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

type DashboardStats struct {
	repositories.PlatformStats
	PopularSubjects []SubjectCount `json:"popular_subjects"`
}

type RecentActivity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	DeckID    uint      `json:"deck_id,omitempty"`
}

type DashboardResponse struct {
	PopularDecks     []*DeckResponse  `json:"popular_decks"`
	Stats            DashboardStats   `json:"stats"`
	RecentActivities []RecentActivity `json:"recent_activities"`
	UserInfo         UserResponse     `json:"user_info"`
}

type DiscoverRequest struct {
	Subject  string `form:"subject" json:"subject"`
	MinCards int    `form:"min_cards" json:"min_cards" validate:"omitempty,gte=1"`
	Limit    int    `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type SubjectsResponse struct {
	Subjects      []string `json:"subjects"`
	TotalSubjects int      `json:"total_subjects"`
}

// ===== AUTH =====

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type UserResponse struct {
	ID           uint                `json:"id"`
	Email        string              `json:"email"`
	AuthProvider models.AuthProvider `json:"auth_provider"`
	CreatedAt    time.Time           `json:"created_at"`
}
