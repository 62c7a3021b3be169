package idgen

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const groupAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GroupID 生成批量申报的分组标识，形如 GRP-1718000000000-k3x9a
func GroupID() string {
	return fmt.Sprintf("GRP-%d-%s", time.Now().UnixMilli(), gonanoid.MustGenerate(groupAlphabet, 5))
}
