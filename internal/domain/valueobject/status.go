package valueobject

import "github.com/skladhub/admin-backend/internal/pkg/apperror"

// DisputeStatus — статус спора с централизованной таблицей переходов.
// Любая проверка легальности перехода идёт через CanTransitionTo,
// а не через сравнение строк в местах вызова.
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeInProgress  DisputeStatus = "in_progress"
	DisputePendingInfo DisputeStatus = "pending_info"
	DisputeResolved    DisputeStatus = "resolved"
)

func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeOpen, DisputeInProgress, DisputePendingInfo, DisputeResolved:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным.
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeResolved
}

func (s DisputeStatus) CanTransitionTo(newStatus DisputeStatus) bool {
	transitions := map[DisputeStatus][]DisputeStatus{
		DisputeOpen:        {DisputeInProgress},
		DisputeInProgress:  {DisputePendingInfo, DisputeResolved},
		DisputePendingInfo: {DisputeInProgress},
		DisputeResolved:    {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewDisputeStatus(status string) (DisputeStatus, error) {
	s := DisputeStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус спора")
	}
	return s, nil
}

// ReviewStatus — статус отзыва.
// Помеченный (flagged) отзыв не является конечным: его можно
// повторно одобрить или отклонить.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewFlagged  ReviewStatus = "flagged"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewFlagged:
		return true
	}
	return false
}

func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

func (s ReviewStatus) CanTransitionTo(newStatus ReviewStatus) bool {
	transitions := map[ReviewStatus][]ReviewStatus{
		ReviewPending:  {ReviewApproved, ReviewRejected, ReviewFlagged},
		ReviewFlagged:  {ReviewApproved, ReviewRejected},
		ReviewApproved: {},
		ReviewRejected: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// VerificationStatus — статус KYC заявки.
// Возврат additional_docs_required -> pending происходит при повторной
// подаче документов пользователем.
type VerificationStatus string

const (
	VerificationPending        VerificationStatus = "pending"
	VerificationApproved       VerificationStatus = "approved"
	VerificationRejected       VerificationStatus = "rejected"
	VerificationAdditionalDocs VerificationStatus = "additional_docs_required"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected, VerificationAdditionalDocs:
		return true
	}
	return false
}

func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationApproved || s == VerificationRejected
}

func (s VerificationStatus) CanTransitionTo(newStatus VerificationStatus) bool {
	transitions := map[VerificationStatus][]VerificationStatus{
		VerificationPending:        {VerificationApproved, VerificationRejected, VerificationAdditionalDocs},
		VerificationAdditionalDocs: {VerificationPending},
		VerificationApproved:       {},
		VerificationRejected:       {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}
