package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request-id middleware stores under.
const RequestIDKey = "requestID"

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	ReqID  string         `json:"req_id,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	Staff  string         `json:"staff,omitempty"`
	Action string         `json:"action"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func write(level string, c *gin.Context, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil && c.Request != nil {
		e.IP = c.ClientIP()
		e.Method = c.Request.Method
		e.Path = c.Request.URL.Path
		e.ReqID = c.GetString(RequestIDKey)
		e.Staff = c.GetString("staff")
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

// c may be nil for events outside a request (startup, persistence).
func Info(c *gin.Context, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *gin.Context, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}
func Warn(c *gin.Context, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}
func Security(c *gin.Context, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}
func Error(c *gin.Context, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
