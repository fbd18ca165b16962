// Package invitecode реализует генерацию случайных инвайт-кодов.
//
// Код состоит из заглавных латинских букв и цифр, использует
// криптографический источник случайности.
package invitecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength — длина генерируемого инвайт-кода.
const CodeLength = 8

// Generate возвращает новый случайный инвайт-код длиной CodeLength символов.
func Generate() (string, error) {
	const op = "invitecode.Generate"
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
