// Command officialwechat 在命令行中调用公众号接口：获取 access_token、生成临时二维码、查询用户信息。
//
// 配置来自环境变量或 .env 文件，见 internal/config。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

var errUsage = errors.New("usage")

const usage = `Usage: officialwechat [-env file] <command> [flags]

Commands:
  token     print the access token (-refresh to bypass the cache)
  qrcode    create a temporary QR code for a scene (-scene, -expire, -o)
  userinfo  look up a subscriber by openid (-openid, -lang)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			color.New(color.FgHiRed, color.Bold).Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("officialwechat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env", "", "env file to load (default .env when present)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	var cmd func(context.Context, *app, []string) error
	switch fs.Arg(0) {
	case "token":
		cmd = runToken
	case "qrcode":
		cmd = runQRCode
	case "userinfo":
		cmd = runUserInfo
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	a, err := newApp(ctx, files, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return cmd(ctx, a, fs.Args()[1:])
}
