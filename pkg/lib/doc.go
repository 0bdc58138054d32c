// Package lib provides a Go SDK to submit jobs to an asynchronous job backend
// and wait for their outcomes programmatically.
//
// This package allows applications to use the backend without shelling out
// to the jobwatch CLI binary. Every job is submitted once, then its task is
// polled at a fixed interval until it completes or fails.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{BackendURL: "http://localhost:8080"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	job, err := client.Submit(ctx, lib.SubmitOpts{
//	    Operation: lib.OperationGenerate,
//	    Prompt:    "a haiku about queues",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcome, err := job.Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outcome.Text)
//
// # Images
//
// The multimodal and steganography operations need an image, set
// [SubmitOpts].Image and it will be base64 encoded before submitting. If the
// image can't be read the job resolves as failed without reaching the backend.
//
// # Conversations
//
// Chat keeps an append-only transcript. The backend may answer some prompts
// inline, those jobs are resolved as soon as [Conversation.Send] returns:
//
//	conv := client.NewConversation(os.Stdout)
//	job, _ := conv.Send(ctx, "/implement a rate limiter")
//	job.Wait(ctx)
//	for _, e := range conv.Entries() {
//	    fmt.Println(e)
//	}
//
// # Journal
//
// Set [Config].DBPath to record every submission on a SQLite journal, and
// list it with [Client.History]. By default submissions are only kept in memory.
package lib
