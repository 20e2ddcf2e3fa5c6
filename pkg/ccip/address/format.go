package address

import (
	"encoding/hex"
	"strconv"

	tonaddress "github.com/xssnick/tonutils-go/address"
)

func formatRaw(workchain int32, hash []byte) string {
	return strconv.FormatInt(int64(workchain), 10) + ":" + hex.EncodeToString(hash)
}

// RawString renders any standard TON address as "workchain:hex".
func RawString(a *tonaddress.Address) string {
	if a == nil {
		return ""
	}
	return formatRaw(a.Workchain(), a.Data())
}
