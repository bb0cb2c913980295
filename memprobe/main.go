package main

import "github.com/cachelab/memprobe/memprobe/cmd"

func main() {
	cmd.Execute()
}
