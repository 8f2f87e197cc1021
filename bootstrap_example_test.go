// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/z5labs/bootstrap"
	"github.com/z5labs/bootstrap/client"
	runtimehttp "github.com/z5labs/bootstrap/runtime/http"
)

func ExampleStart() {
	p := runtimehttp.NewProvider()

	app := bootstrap.NewApplication(
		bootstrap.WithResource(
			bootstrap.HandleFunc("GET /hello", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "Hello, world!")
			}),
		),
	)

	cfg, err := bootstrap.ConfigurationBuilder(p).
		Host("127.0.0.1").
		Port(0).
		RootPath("/api").
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	inst, err := bootstrap.Start(ctx, p, app, cfg).Await(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	resp, err := client.New().ForInstance(inst).Path("hello").Request("text/plain").Get(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	greeting, err := client.ReadEntity[string](resp)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(greeting)

	res, err := inst.Stop(ctx).Await(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	_, err = bootstrap.Unwrap[*http.Server](res)
	if err != nil {
		fmt.Println(err)
		return
	}
	if sr, ok := res.(runtimehttp.StopResult); ok {
		fmt.Println("graceful:", sr.Graceful())
	}
	// Output: Hello, world!
	// graceful: true
}
