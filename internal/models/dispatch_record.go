package models

import "gorm.io/gorm"

// DispatchRecord is a locally recorded workflow trigger attempt.
type DispatchRecord struct {
	gorm.Model
	Mode       string `json:"mode"`
	Succeeded  bool   `json:"succeeded"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
}
