package catalog

import (
	"strconv"
	"strings"
)

// ParsePrice reads the amount out of a retailer formatted price such as
// "£12.99", "$1,299.00" or "12,99 €". ok is false when no amount can be found.
func ParsePrice(price string) (amount float64, ok bool) {
	var digits strings.Builder
	for _, c := range price {
		if (c >= '0' && c <= '9') || c == '.' || c == ',' {
			digits.WriteRune(c)
		}
	}
	number := strings.Trim(digits.String(), ".,")
	if number == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(number, '.')
	lastComma := strings.LastIndexByte(number, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// whichever separator comes last is the decimal one
		if lastComma > lastDot {
			number = strings.ReplaceAll(number, ".", "")
			number = strings.Replace(number, ",", ".", 1)
		} else {
			number = strings.ReplaceAll(number, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(number, ",") == 1 && len(number)-lastComma-1 == 2 {
			number = strings.Replace(number, ",", ".", 1)
		} else {
			number = strings.ReplaceAll(number, ",", "")
		}
	case strings.Count(number, ".") > 1:
		number = strings.ReplaceAll(number, ".", "")
	}

	amount, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// FilterByBudget drops the records whose price exceeds maxPrice. Records with
// a price that cannot be read are kept. A maxPrice <= 0 means no budget.
func FilterByBudget(records []SaleRecord, maxPrice float64) []SaleRecord {
	if maxPrice <= 0 {
		return records
	}
	filtered := make([]SaleRecord, 0, len(records))
	for _, r := range records {
		amount, ok := ParsePrice(r.Price)
		if ok && amount > maxPrice {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
