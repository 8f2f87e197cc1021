// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command seserve serves a greeting resource with the HTTP provider.
package main

import (
	"context"
	"os"
)

func main() {
	err := newCommand().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
