package types

// ExecuteRequest represents a tool execution request on the ops API
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
}
