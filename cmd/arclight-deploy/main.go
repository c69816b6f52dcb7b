package main

import "github.com/oshokin/arclight-deploy/cmd/arclight-deploy/cmd"

func main() {
	cmd.Execute()
}
