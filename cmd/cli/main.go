// Command cli is a small operator tool for filegate: upload a local file,
// fetch an object to disk, or inspect a policy.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/workhive/filegate/client"
)

var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func main() {

	serverURL := flag.String("s", "http://localhost:8080", "filegate server URL")
	token := flag.String("t", os.Getenv("FILEGATE_TOKEN"), "bearer token")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	c := client.New(*serverURL, *token)

	var err error
	switch args[0] {
	case "upload":
		err = runUpload(ctx, c, args[1:])
	case "fetch":
		err = runFetch(ctx, c, args[1:])
	case "policy":
		err = runPolicy(ctx, c, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  cli [-s server] [-t token] upload -f <file> -p <profile|resume|requirement> [-c content-type] [-v public|private]
  cli [-s server] [-t token] fetch [-o outfile] <object-path>
  cli [-s server] [-t token] policy <object-path>`)
}

func runUpload(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("f", "", "file to upload")
	purpose := fs.String("p", "resume", "upload purpose")
	contentType := fs.String("c", "", "content type (default: by extension)")
	visibility := fs.String("v", "private", "visibility of the committed object")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("upload: -f is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	ct := *contentType
	if ct == "" {
		ct = contentTypeByExt[strings.ToLower(filepath.Ext(*file))]
	}
	if ct == "" {
		return fmt.Errorf("upload: cannot infer content type of %s, pass -c", *file)
	}

	grant, err := c.RequestUploadGrant(ctx, client.Purpose(*purpose), ct, int64(len(data)))
	if err != nil {
		return err
	}
	if err := c.Upload(ctx, grant, data); err != nil {
		return err
	}

	policy, err := c.Commit(ctx, grant.ObjectPath, *visibility)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s as %s (%s)\n", *file, policy.ObjectPath, policy.Visibility)
	return nil
}

func runFetch(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	out := fs.String("o", "", "output file (default: object file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("fetch: exactly one object path expected")
	}
	objectPath := fs.Arg(0)

	obj, err := c.Fetch(ctx, objectPath)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	name := *out
	if name == "" {
		name = filepath.Base(objectPath)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, obj.Body)
	if err != nil {
		return err
	}

	fmt.Printf("fetched %s (%d bytes, %s) to %s\n", objectPath, n, obj.ContentType, name)
	return nil
}

func runPolicy(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("policy: exactly one object path expected")
	}

	policy, err := c.GetPolicy(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("path:       %s\nowner:      %s\nvisibility: %s\nupdated:    %s\n",
		policy.ObjectPath, policy.OwnerID, policy.Visibility, policy.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
