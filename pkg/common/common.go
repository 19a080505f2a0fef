package common

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a new snowflake id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

var titleCaser = cases.Title(language.Und)

// NormalizeName trims surrounding whitespace, collapses inner runs of
// whitespace and title-cases every word. Two names that differ only in
// case or spacing normalize to the same value, which is what the unique
// index on product names compares against.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.ToLower(strings.Join(fields, " ")))
}

// HashPassword hashes a plaintext operator password with bcrypt
func HashPassword(password string) (string, error) {
	bs, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// CheckPassword compares a bcrypt hash with a plaintext candidate
func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
