package accessCode

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samborkent/uuidv7"
)

func GenerateCode(slug, secret string) string {
	code := fmt.Sprintf("%s|%s", slug, secret)

	// Encoding the string
	encodedString := base64.StdEncoding.EncodeToString([]byte(code))

	return encodedString
}

// NewSecret returns a fresh opaque secret for a scoreboard share link.
func NewSecret() string {
	return uuidv7.New().String()
}

func Decode(code string) (slug, secret string, err error) {
	// Decoding the string
	decodedBytes, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return "", "", err
	}
	decodedString := string(decodedBytes)
	res := strings.Split(decodedString, "|")
	if len(res) != 2 {
		return "", "", fmt.Errorf("not correct format")
	}
	return res[0], res[1], nil
}
