package minimax

import (
	"bytes"
	"encoding/json"
	"strings"
)

// completionResponse holds every field the answer may live under. Fields stay
// raw until an extractor probes them, so an unexpected type in one place does
// not prevent reading another.
type completionResponse struct {
	Choices  json.RawMessage `json:"choices"`
	Text     json.RawMessage `json:"text"`
	Reply    json.RawMessage `json:"reply"`
	BaseResp *baseResp       `json:"base_resp"`
}

type baseResp struct {
	StatusCode *int   `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

// decodeCompletion parses a 2xx body. Valid JSON whose top level is not an
// object decodes to an empty response, so no shape matches.
func decodeCompletion(raw []byte) (*completionResponse, error) {
	var top json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, err
	}
	var r completionResponse
	if len(top) == 0 || top[0] != '{' {
		return &r, nil
	}
	if err := json.Unmarshal(top, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// appError reports a present base_resp whose status_code is missing or non-zero.
func (r *completionResponse) appError(httpStatus int) *APIError {
	if r.BaseResp == nil {
		return nil
	}
	var code int
	if r.BaseResp.StatusCode != nil {
		if *r.BaseResp.StatusCode == 0 {
			return nil
		}
		code = *r.BaseResp.StatusCode
	}
	msg := r.BaseResp.StatusMsg
	if msg == "" {
		msg = appErrorFallback
	}
	return &APIError{StatusCode: httpStatus, AppCode: code, Message: msg}
}

func (r *completionResponse) firstChoice() json.RawMessage {
	var choices []json.RawMessage
	if err := json.Unmarshal(r.Choices, &choices); err != nil || len(choices) == 0 {
		return nil
	}
	return choices[0]
}

// extractor pulls one candidate answer location out of a response.
type extractor struct {
	shape string
	pick  func(r *completionResponse) json.RawMessage
	// strict extractors accept only a JSON string, never a nested object.
	strict bool
}

// extractors are tried in order; the first one yielding non-blank text wins.
var extractors = []extractor{
	{shape: "choices[0].message.content", pick: func(r *completionResponse) json.RawMessage {
		return objectField(objectField(r.firstChoice(), "message"), "content")
	}},
	{shape: "choices[0].message.text", pick: func(r *completionResponse) json.RawMessage {
		return objectField(objectField(r.firstChoice(), "message"), "text")
	}},
	{shape: "choices[0].text", pick: func(r *completionResponse) json.RawMessage {
		return objectField(r.firstChoice(), "text")
	}},
	{shape: "text", pick: func(r *completionResponse) json.RawMessage {
		return r.Text
	}},
	{shape: "reply", pick: func(r *completionResponse) json.RawMessage {
		return r.Reply
	}},
	{shape: "choices[0]", strict: true, pick: func(r *completionResponse) json.RawMessage {
		return r.firstChoice()
	}},
}

// extractAnswer returns the trimmed answer and the shape it was found under,
// or two empty strings when no shape matched.
func extractAnswer(r *completionResponse) (string, string) {
	for _, ex := range extractors {
		raw := ex.pick(r)
		var text string
		if ex.strict {
			text = stringValue(raw)
		} else {
			text = textValue(raw)
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, ex.shape
		}
	}
	return "", ""
}

// textValue reads a string directly, or the text/content field of an object.
func textValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		return stringValue(raw)
	case '{':
		if s := stringValue(objectField(raw, "text")); strings.TrimSpace(s) != "" {
			return s
		}
		return stringValue(objectField(raw, "content"))
	}
	return ""
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func objectField(raw json.RawMessage, key string) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj[key]
}
