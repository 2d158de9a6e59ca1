package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wfunc/pet-game/internal/game/pet"
)

// ParseAmount 把十进制字符串解析为最小单位，小数位不能超过 decimals
func ParseAmount(s string, decimals int) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")
	if !isDigits(whole) || (hasFrac && !isDigits(frac)) {
		return 0, fmt.Errorf("无效的数量: %q", s)
	}
	if hasFrac && len(frac) > decimals {
		return 0, fmt.Errorf("数量 %q 的小数位超过 %d 位", s, decimals)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的数量: %q", s)
	}
	unit := pet.TokenUnit(decimals)
	if w > math.MaxInt64/unit {
		return 0, fmt.Errorf("数量溢出: %q", s)
	}
	amount := w * unit

	if hasFrac {
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("无效的数量: %q", s)
		}
		amount += f * pet.TokenUnit(decimals-len(frac))
	}
	if amount <= 0 {
		return 0, fmt.Errorf("数量必须为正数: %q", s)
	}
	return amount, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatAmount 把最小单位格式化为十进制字符串，去掉末尾的 0
func FormatAmount(amount int64, decimals int) string {
	if decimals <= 0 {
		return strconv.FormatInt(amount, 10)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	unit := pet.TokenUnit(decimals)
	whole, frac := amount/unit, amount%unit
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	fs := strings.TrimRight(fmt.Sprintf("%0*d", decimals, frac), "0")
	return sign + strconv.FormatInt(whole, 10) + "." + fs
}
