package models

import (
	"bytes"
	"encoding/json"
)

type MsgType string

const (
	MsgInfo    MsgType = "info"
	MsgSuccess MsgType = "success"
	MsgError   MsgType = "error"
)

// MsgRes is the {type, msg} envelope used for failures and for mutations
// that have no typed result.
type MsgRes struct {
	Type MsgType `json:"type" validate:"required,oneof=info success error"`
	Msg  string  `json:"msg"`
}

func Success(msg string) MsgRes {
	return MsgRes{Type: MsgSuccess, Msg: msg}
}

func Failure(msg string) MsgRes {
	return MsgRes{Type: MsgError, Msg: msg}
}

// Err returns an *APIError when the envelope reports a failure.
func (m MsgRes) Err() error {
	if m.Type == MsgError {
		return &APIError{Msg: m.Msg}
	}
	return nil
}

// APIError carries the msg of an error envelope returned by the server.
type APIError struct {
	Msg string
}

func (e *APIError) Error() string {
	return e.Msg
}

// AsMessage reports whether data is a well-formed {type, msg} envelope and
// nothing else.
func AsMessage(data []byte) (MsgRes, bool) {
	var probe struct {
		Type *MsgType `json:"type"`
		Msg  *string  `json:"msg"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&probe); err != nil || probe.Type == nil || probe.Msg == nil {
		return MsgRes{}, false
	}
	switch *probe.Type {
	case MsgInfo, MsgSuccess, MsgError:
		return MsgRes{Type: *probe.Type, Msg: *probe.Msg}, true
	}
	return MsgRes{}, false
}
