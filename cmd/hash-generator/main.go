// Command hash-generator prints a bcrypt hash for a password so operators
// can seed accounts, such as the first admin, directly in the database:
//
//	echo -n 'secret1' | go run ./cmd/hash-generator -cost 10
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost (4-31)")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *cost); err != nil {
		fmt.Fprintln(os.Stderr, "hash-generator:", err)
		os.Exit(1)
	}
}

// run reads one password line from in and writes its hash to out. The
// password must satisfy the same policy as registration.
func run(in io.Reader, out io.Writer, cost int) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := auth.NewBcryptVerifier(cost).Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
