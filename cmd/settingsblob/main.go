// settingsblob decodes hex settings blobs from stdin, one per line, for
// poking at what a device has stored.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/pvollmer/irgauge/pkg/settings"
)

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		src := scanner.Bytes()
		fmt.Println(Format(src))
	}
}

func Format(src []byte) string {
	dst := make([]byte, hex.DecodedLen(len(src)))
	n, err := hex.Decode(dst, src)
	if err != nil {
		log.Fatal(err)
	}

	rec, legacy := settings.Decode(dst[:n])
	if legacy {
		return fmt.Sprintf("%s (legacy sound byte)", rec)
	}
	return rec.String()
}
