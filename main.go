package main

import "github.com/yeremiapane/hospital-app/cmd"

func main() {
	cmd.Execute()
}
