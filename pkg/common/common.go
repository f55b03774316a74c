package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a new snowflake id. The node is initialized lazily
// so tests can call this without any setup.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// UUID returns a new snowflake id in base58 string form, used for
// client-facing identifiers such as chat conversation ids.
func UUID() string {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Base58()
}

// Sha256Hash returns the hex encoded sha256 of src.
func Sha256Hash(src string) string {
	h := sha256.New()
	h.Write([]byte(src))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GetSecretSalt reads the shared secret salt from the environment,
// falling back to a fixed development value.
func GetSecretSalt() string {
	if s := os.Getenv("STOREFRONT_SECRET"); s != "" {
		return s
	}
	return "storefront-dev-secret"
}

// Sha256HashWithSalt hashes src together with salt.
func Sha256HashWithSalt(src, salt string) string {
	return Sha256Hash(src + salt)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
