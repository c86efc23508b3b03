// Command hashpw prints the bcrypt hash for console.password_hash.
//
// Usage: hashpw <password>
package main

import (
	"fmt"
	"os"

	gonet "github.com/hauntess/server/internal/net"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	hash, err := gonet.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
