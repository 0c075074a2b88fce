package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
	"unicode"
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

// Slugify 生成 URL 安全的 slug：小写字母数字，其余字符折叠成单个 '-'
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug slug 后面拼 4 位随机数，降低重名概率（存储层不做唯一约束）
func UniqueSlug(name string) (string, error) {
	suffix, err := RandDigits(4)
	if err != nil {
		return "", err
	}
	base := Slugify(name)
	if base == "" {
		return "community-" + suffix, nil
	}
	return base + "-" + suffix, nil
}
