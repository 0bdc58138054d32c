package lib_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/slok/jobwatch/internal/backend/fake"
	"github.com/slok/jobwatch/pkg/lib"
	"github.com/slok/jobwatch/pkg/lib/log"
)

func newExampleBackend() *httptest.Server {
	b, err := fake.NewBackend(fake.BackendConfig{PendingPolls: 1})
	if err != nil {
		panic(err)
	}
	return httptest.NewServer(fake.NewHandler(b, nil))
}

// This example submits a generate job and waits for its outcome.
func Example_generate() {
	ctx := context.Background()

	srv := newExampleBackend()
	defer srv.Close()

	client, err := lib.New(ctx, lib.Config{
		BackendURL:   srv.URL,
		PollInterval: 10 * time.Millisecond,
		Logger:       log.Noop,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	job, err := client.Submit(ctx, lib.SubmitOpts{
		Operation: lib.OperationGenerate,
		Prompt:    "a haiku",
	})
	if err != nil {
		panic(err)
	}

	outcome, err := job.Wait(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Println(outcome.Success)
	fmt.Println(outcome.Text)

	// Output:
	// true
	// {
	//   "text": "Generated response for: a haiku"
	// }
}

// This example chats with the backend, some prompts are answered inline and
// others become backend tasks.
func Example_conversation() {
	ctx := context.Background()

	srv := newExampleBackend()
	defer srv.Close()

	client, err := lib.New(ctx, lib.Config{
		BackendURL:   srv.URL,
		PollInterval: 10 * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	conv := client.NewConversation(nil)
	for _, prompt := range []string{"hi", "/implement a cache"} {
		job, err := conv.Send(ctx, prompt)
		if err != nil {
			panic(err)
		}
		if _, err := job.Wait(ctx); err != nil {
			panic(err)
		}
	}

	for _, e := range conv.Entries() {
		// Task IDs are random.
		if strings.HasPrefix(e.Text, "Task created with ID:") {
			continue
		}
		fmt.Println(e)
	}

	// Output:
	// You: hi
	// Bot: {
	//   "response": "Awaiting command."
	// }
	// You: /implement a cache
	// Bot: {
	//   "original_request": "a cache",
	//   "success": true
	// }
}
