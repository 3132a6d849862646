package main

import (
	"bookcatalog/cmd/book-client/commands"
	"bookcatalog/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
