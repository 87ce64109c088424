package finance

import (
	"fmt"
	"strconv"
	"strings"
)

// VoucherPrefix is the prefix of internally numbered cash vouchers
const VoucherPrefix = "VAL-"

// FormatVoucherNumber renders a sequence as a VAL code, e.g. 6 -> "VAL-000006"
func FormatVoucherNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", VoucherPrefix, seq)
}

// VoucherSequence parses the sequence out of a VAL code. The second return
// is false for anything that is not a well-formed VAL number.
func VoucherSequence(number string) (int64, bool) {
	if !strings.HasPrefix(number, VoucherPrefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, VoucherPrefix), 10, 64)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}
