package main

import "github.com/previewkit/convertd/cmd"

func main() {
	cmd.Execute()
}
