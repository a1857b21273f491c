package valueobject

// PlatformFeeRate — единая комиссия платформы (9%).
// Все места, где делится выручка, обязаны использовать PlatformFee и
// NetAmount, чтобы константа не расходилась между вызовами.
const PlatformFeeRate = 0.09

// PlatformFee возвращает комиссию платформы с суммы.
func PlatformFee(amount float64) float64 {
	return amount * PlatformFeeRate
}

// NetAmount возвращает сумму к выплате хосту после вычета комиссии.
func NetAmount(amount float64) float64 {
	return amount * (1 - PlatformFeeRate)
}

// PercentChange возвращает изменение показателя между периодами в процентах.
// При нулевом предыдущем значении: 100 если текущее положительно, иначе 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
