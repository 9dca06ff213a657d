// Command hash-password prints a bcrypt hash for seeding user rows, for
// example the first administrator.
//
// Usage:
//
//	hash-password [-cost 12] < password.txt
//	echo -n 'secret' | hash-password
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *cost); err != nil {
		fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
		os.Exit(1)
	}
}

// run reads the first line of in and writes its hash to out.
func run(in io.Reader, out io.Writer, cost int) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password is empty")
	}
	if len(password) > 72 {
		return errors.New("password exceeds bcrypt's 72 byte limit")
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
