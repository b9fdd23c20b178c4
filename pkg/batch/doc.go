// Package batch fetches one placeholder image per work item and saves each to disk.
//
// Every item becomes one GET request built from a shared, immutable
// RequestTemplate plus the item under a fixed key (normally "text"). Items
// are processed strictly in order, one request in flight at a time.
//
// Example usage:
//
//	api, _ := client.New(client.DefaultConfig(baseURL))
//	tmpl := client.NewImageTemplate(client.ImageOptions{Width: 600, Height: 600, Font: "New Amsterdam", Format: "png"})
//	cfg := batch.DefaultConfig(sink.ExtensionPath("test", ".png"))
//	bf, _ := batch.NewBatchFetcher(api, sink.NewFileSink(), tmpl, cfg)
//	summary, err := bf.Run(ctx, []string{"clumsy", "sleepy"})
//
// The batch fetcher:
//   - Writes the body of every 200 response to PathFor(item)
//   - Logs exactly one line per item: saved, or failed with the reason
//   - Treats any status other than 200 as a failure, without retry
//   - Recovers transport and write failures per item unless told to abort
//   - Processes duplicate items independently; the last write wins
package batch
