package main

import "github.com/fastogt/fastobuild/cmd/fastobuild/internal"

func main() {
	internal.Execute()
}
