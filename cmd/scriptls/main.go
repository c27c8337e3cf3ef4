package main

import (
	"github.com/scriptls/scriptls/pkg/scriptls"
)

func main() {
	scriptls.Execute()
}
