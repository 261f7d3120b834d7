// cmd/readfix/main.go
package main

import (
	"readfix/internal/app"
	"readfix/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
