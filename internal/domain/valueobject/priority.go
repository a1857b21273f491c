package valueobject

// Приоритеты споров.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Пороги приоритета по суммарному баллу.
const (
	priorityHighThreshold   = 6
	priorityMediumThreshold = 3
)

// DisputePriorityScore считает балл приоритета спора.
// Функция чистая и тотальная: неизвестный тип получает минимальный вес.
// Балл фиксируется при создании спора и не пересчитывается.
func DisputePriorityScore(disputeType string, amount float64, isUrgent bool) int {
	score := 0

	switch disputeType {
	case "payment", "damage":
		score += 3
	case "cancellation", "service":
		score += 2
	default:
		score += 1
	}

	switch {
	case amount > 10000:
		score += 3
	case amount > 5000:
		score += 2
	case amount > 1000:
		score += 1
	}

	if isUrgent {
		score += 2
	}

	return score
}

// DisputePriority переводит балл в уровень приоритета.
func DisputePriority(score int) string {
	switch {
	case score >= priorityHighThreshold:
		return PriorityHigh
	case score >= priorityMediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// IsEscalated сообщает, требует ли балл эскалации уведомления.
func IsEscalated(score int) bool {
	return score >= priorityHighThreshold
}
