package main

import "github.com/warrenleitner/moti-do-sub001/cmd/motido/root"

func main() {
	root.Execute()
}
