// hashkey prints the argon2id hash of an API admin key, for the
// api.admin_key_hash config field.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	mw "github.com/hamed0406/hostwatch/internal/httpapi/middleware"
)

func main() {
	var key string
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		fmt.Print("Enter admin key: ")
		reader := bufio.NewReader(os.Stdin)
		raw, _ := reader.ReadString('\n')
		key = strings.TrimSpace(raw)
	}
	if key == "" {
		fmt.Println("Empty key.")
		os.Exit(1)
	}

	hash, err := mw.HashKey(key)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
