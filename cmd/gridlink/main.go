package main

import (
	"github.com/gridstore-io/gridlink"
)

func main() {
	gridlink.Run()
}
