package utils

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"
)

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// ULID returns a lexicographically sortable unique id.
func ULID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Unmarshal remarshals an already decoded value into a typed destination.
func Unmarshal(data any, dest any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode value: %s", err)
	}
	return json.Unmarshal(encoded, dest)
}

// UnmarshalFile decodes a JSON or YAML file into dest. With strict set,
// unknown fields fail instead of being dropped silently.
func UnmarshalFile(path string, dest any, strict bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %s", path, err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file %s: %s", path, err)
		}
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("failed to decode file %s: %s", path, err)
	}
	return nil
}

// Concurrent executes fn over every element with bounded parallelism,
// cancelling the remainder on the first error.
func Concurrent[T any](ctx context.Context, array []T, concurrency int, fn func(ctx context.Context, one T, executionNumber int) error) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for idx, one := range array {
		idx, one := idx, one
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fn(ctx, one, idx)
			}
		})
	}

	return group.Wait()
}

// ArrayContains returns the index of the first element satisfying check.
func ArrayContains[T any](array []T, check func(elem T) bool) (int, bool) {
	for idx, elem := range array {
		if check(elem) {
			return idx, true
		}
	}
	return -1, false
}

func IsValidSubcommand(commands []*cobra.Command, subcommand string) bool {
	_, found := ArrayContains(commands, func(cmd *cobra.Command) bool {
		return cmd.Use == subcommand
	})
	return found
}
