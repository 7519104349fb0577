package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/ShinyNito/officialwechat/officialaccount"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func runToken(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("token")
	refresh := fs.Bool("refresh", false, "ignore the cached token and fetch a new one")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var (
		token string
		err   error
	)
	if *refresh {
		token, err = a.client.RefreshAccessToken(ctx)
	} else {
		token, err = a.client.GetAccessToken(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, token)
	return nil
}

func runQRCode(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("qrcode")
	scene := fs.String("scene", "", "scene string carried by the QR code (required)")
	expire := fs.Int("expire", officialaccount.DefaultQRCodeExpireSeconds, "expiry in seconds")
	output := fs.String("o", "", "write the PNG image to this file instead of printing the data URI")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *scene == "" {
		fs.Usage()
		return fmt.Errorf("-scene is required")
	}

	image, err := a.client.GetQRCode(ctx, officialaccount.QRCodeRequest{SceneStr: *scene, ExpireSeconds: *expire})
	if err != nil {
		return err
	}

	if *output == "" {
		fmt.Fprintln(a.stdout, image)
		return nil
	}

	data, err := officialaccount.DecodeDataURI(image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("write qrcode: %w", err)
	}
	color.New(color.FgGreen).Fprintf(a.stdout, "qrcode written to %s (%d bytes)\n", *output, len(data))
	return nil
}

func runUserInfo(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("userinfo")
	openID := fs.String("openid", "", "subscriber openid (required)")
	lang := fs.String("lang", officialaccount.DefaultLang, "zh_CN, zh_TW or en")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *openID == "" {
		fs.Usage()
		return fmt.Errorf("-openid is required")
	}

	info, err := a.client.GetUserInfo(ctx, officialaccount.GetUserInfoRequest{OpenID: *openID, Lang: *lang})
	if err != nil {
		return err
	}

	renderUserInfo(a, info)
	return nil
}

func renderUserInfo(a *app, info *officialaccount.UserInfo) {
	table := tablewriter.NewWriter(a.stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetColumnSeparator("|")
	table.SetAutoWrapText(false)

	table.Append([]string{"subscribe", strconv.Itoa(info.Subscribe)})
	table.Append([]string{"openId", info.OpenID})
	table.Append([]string{"nickname", info.Nickname})
	table.Append([]string{"sex", strconv.Itoa(int(info.Sex))})
	table.Append([]string{"language", info.Language})
	table.Append([]string{"city", info.City})
	table.Append([]string{"province", info.Province})
	table.Append([]string{"country", info.Country})
	table.Append([]string{"subscribeTime", strconv.FormatInt(info.SubscribeTime, 10)})
	table.Append([]string{"unionId", info.UnionID})
	table.Append([]string{"headImg", info.HeadImg})

	table.Render()
}
