package types

// Category groups tools in listings
type Category string

const (
	CategoryGraphics   Category = "graphics"
	CategoryAlgebra    Category = "algebra"
	CategoryLinalg     Category = "linalg"
	CategoryTransforms Category = "transforms"
	CategoryMath       Category = "math"
)

// Parameter types
const (
	TypeString = "string"
	TypeNumber = "number"
)

// Service represents a service definition
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a service tool
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Choices     []string    `json:"choices,omitempty"`
}

// Context provides execution context for tools
type Context struct {
	RequestID string  `json:"request_id"`
	Source    string  `json:"source"` // "discord" or "http"
	UserID    *string `json:"user_id,omitempty"`
	GuildID   *string `json:"guild_id,omitempty"`
}

// Attachment is a file produced by a tool
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Result represents a tool execution result. Text is the message shown to
// the user alongside any attachments.
type Result struct {
	Success     bool                   `json:"success"`
	Text        string                 `json:"text,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Attachments []Attachment           `json:"attachments,omitempty"`
	Error       *string                `json:"error,omitempty"`
}

// Message returns the text to show the user: the error for a failure,
// otherwise Text.
func (r *Result) Message() string {
	if !r.Success && r.Error != nil {
		return *r.Error
	}
	return r.Text
}
