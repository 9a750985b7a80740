// Package ws provides the WebSocket client used to stream audio to the
// conversion server.
//
// The wire protocol is minimal: the client sends the file as binary
// frames of a fixed size in file order, then a text frame holding the
// terminator ("EOF"). The server answers with zero or more binary frames,
// each an independently decodable audio fragment, and closes the
// connection when done.
//
// # Basic Usage
//
//	client := ws.NewClient(settings)
//	conn, err := client.Dial(ctx, "ws://localhost:8080/stream")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	go conn.Upload(ctx, data, 512*1024, "EOF", func(sent, total int64) {
//	    fmt.Printf("%d/%d bytes\n", sent, total)
//	})
//
//	err = conn.Receive(ctx, func(fragment []byte) {
//	    // decode and play
//	}, nil)
package ws
