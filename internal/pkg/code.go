package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// NewUid 生成用户对外别名。注册时分配一次，之后不再变化。
func NewUid() string {
	return "u_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
