package store

import "time"

type SourceType string

const (
	SourceURL   SourceType = "url"
	SourcePaste SourceType = "paste"
)

type ProfileStatus string

const (
	ProfileUntrained ProfileStatus = "untrained"
	ProfileTraining  ProfileStatus = "training"
	ProfileReady     ProfileStatus = "ready"
	ProfileFailed    ProfileStatus = "failed"
)

type CrawlStatus string

const (
	CrawlPending CrawlStatus = "pending"
	CrawlSuccess CrawlStatus = "success"
	CrawlFailed  CrawlStatus = "failed"
)

type RequestStatus string

const (
	RequestQueued     RequestStatus = "queued"
	RequestGenerating RequestStatus = "generating"
	RequestCompleted  RequestStatus = "completed"
	RequestFailed     RequestStatus = "failed"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type StyleProfile struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	SourceType   SourceType    `json:"sourceType"`
	SourceURL    *string       `json:"sourceUrl"`
	TrainingText *string       `json:"trainingText"`
	StyleSummary string        `json:"styleSummary"`
	Status       ProfileStatus `json:"status"`
	LastError    *string       `json:"lastError"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type CrawlAttempt struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	URL           string      `json:"url"`
	Status        CrawlStatus `json:"status"`
	HTTPStatus    *int        `json:"httpStatus"`
	ExtractedText *string     `json:"extractedText"`
	ErrorMessage  *string     `json:"errorMessage"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type WritingRequest struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Topic       string        `json:"topic"`
	TitleHint   *string       `json:"titleHint"`
	KeyPoints   *string       `json:"keyPoints"`
	Constraints *string       `json:"constraints"`
	Status      RequestStatus `json:"status"`
	LastError   *string       `json:"lastError"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type GeneratedDraft struct {
	ID               string    `json:"id"`
	WritingRequestID string    `json:"writingRequestId"`
	UserID           string    `json:"userId"`
	Content          string    `json:"content"`
	Version          int       `json:"version"`
	IsLatest         bool      `json:"isLatest"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Field is one nullable column in a partial update. The zero value leaves the
// column untouched; Set writes a value and SetNull writes NULL.
type Field[T any] struct {
	set   bool
	value *T
}

func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

func SetNull[T any]() Field[T] {
	return Field[T]{set: true}
}

// IsSet reports whether the update touches the column.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Apply returns the column value after the update.
func (f Field[T]) Apply(current *T) *T {
	if !f.set {
		return current
	}
	if f.value == nil {
		return nil
	}
	v := *f.value
	return &v
}

// StyleProfileUpsert describes a write to a user's single style profile.
// SourceURL is stored only when SourceType is url and is NULL otherwise.
type StyleProfileUpsert struct {
	SourceType   SourceType
	SourceURL    *string
	TrainingText Field[string]
	StyleSummary *string
	Status       ProfileStatus
	LastError    Field[string]
}

type CrawlAttemptUpdate struct {
	Status        CrawlStatus
	HTTPStatus    Field[int]
	ExtractedText Field[string]
	ErrorMessage  Field[string]
}

type WritingRequestInput struct {
	Topic       string
	TitleHint   *string
	KeyPoints   *string
	Constraints *string
}

type WritingRequestUpdate struct {
	Topic       string
	TitleHint   Field[string]
	KeyPoints   Field[string]
	Constraints Field[string]
	Status      RequestStatus
	LastError   Field[string]
}
