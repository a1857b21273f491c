package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы KYC заявки.
const (
	VerificationStatusPending        = "pending"
	VerificationStatusApproved       = "approved"
	VerificationStatusRejected       = "rejected"
	VerificationStatusAdditionalDocs = "additional_docs_required"
)

// Типы верификации.
const (
	VerificationTypeHost          = "host"
	VerificationTypePremiumClient = "premium_client"
)

// VerificationDocument — загруженный документ KYC заявки.
type VerificationDocument struct {
	Kind       string    `json:"kind"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentList хранится одним JSONB массивом в строке заявки.
type DocumentList []VerificationDocument

// Value сериализует список документов в JSONB.
func (l DocumentList) Value() (driver.Value, error) {
	if l == nil {
		l = DocumentList{}
	}
	return json.Marshal(l)
}

// Scan читает список документов из JSONB.
func (l *DocumentList) Scan(src interface{}) error {
	if src == nil {
		*l = DocumentList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("document list: неожиданный тип %T", src)
	}
	return json.Unmarshal(b, l)
}

// StringList хранит список строк в JSONB (например, перечень
// запрошенных документов).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("string list: неожиданный тип %T", src)
	}
	return json.Unmarshal(b, l)
}

// Verification описывает KYC заявку пользователя.
type Verification struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	UserID             uuid.UUID    `db:"user_id" json:"user_id"`
	Type               string       `db:"type" json:"type"`
	Status             string       `db:"status" json:"status"`
	Documents          DocumentList `db:"documents" json:"documents"`
	AssignedTo         *uuid.UUID   `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignedToName     *string      `db:"assigned_to_name" json:"assigned_to_name,omitempty"`
	ReviewNotes        *string      `db:"review_notes" json:"review_notes,omitempty"`
	RejectionReason    *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RequestedDocuments StringList   `db:"requested_documents" json:"requested_documents"`
	RequestMessage     *string      `db:"request_message" json:"request_message,omitempty"`
	ApprovedBy         *uuid.UUID   `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time   `db:"approved_at" json:"approved_at,omitempty"`
	Timeline           Timeline     `db:"timeline" json:"timeline"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}
