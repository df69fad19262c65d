// Copyright (C) 2023  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package distd

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
	"shanhu.io/appdist/access"
	"shanhu.io/appdist/appdir"
	"shanhu.io/appdist/delivery"
	"shanhu.io/appdist/stats"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonutil"
	"shanhu.io/misc/subcmd"
)

func commands() *subcmd.List {
	c := subcmd.New()
	c.Add("serve", "runs the distribution server", cmdServe)

	c.Add("apps", "prints the app listing", cmdApps)
	c.Add("stats", "prints device check-ins of an app", cmdStats)
	c.Add("resolve", "prints versions of an app", cmdResolve)
	c.Add(
		"check-access", "checks if a device can download an app",
		cmdCheckAccess,
	)
	c.Add(
		"check-authcode", "checks an auth code of a device",
		cmdCheckAuthCode,
	)
	return c
}

func printYAML(w io.Writer, v interface{}) error {
	bs, err := yaml.Marshal(v)
	if err != nil {
		return errcode.Annotate(err, "encode yaml")
	}
	_, err = w.Write(bs)
	return err
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", errcode.InvalidArgf("expects one %s", what)
	}
	return args[0], nil
}

func cmdApps(args []string) error {
	flags := cmdFlags.New()
	cflags := newClientFlags(flags)
	format := flags.String("format", "json", "output format, json or yaml")
	args = flags.ParseArgs(args)

	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	s, err := newClientServer(cflags)
	if err != nil {
		return err
	}
	apps, err := s.lister.List(id, cflags.lang)
	if err != nil {
		return err
	}

	switch *format {
	case "json":
		jsonutil.Print(apps)
		return nil
	case "yaml":
		return printYAML(os.Stdout, apps)
	}
	return errcode.InvalidArgf("unknown format %q", *format)
}

func cmdStats(args []string) error {
	flags := cmdFlags.New()
	cflags := newClientFlags(flags)
	args = flags.ParseArgs(args)
	id, err := oneArg(args, "bundle identifier")
	if err != nil {
		return err
	}

	s, err := newClientServer(cflags)
	if err != nil {
		return err
	}
	list, err := s.stats.List(id)
	if err != nil {
		return err
	}
	stats.Sort(list)
	for _, c := range list {
		fmt.Printf(
			"%s  %s  %s  %s  %s  %s\n",
			c.Device, stats.PlatformName(c.Platform), c.OSVersion,
			c.AppVersion, c.LastCheck, c.Language,
		)
	}
	return nil
}

func versionLabel(v *appdir.Version) string {
	if v == nil {
		return "-"
	}
	return v.Label
}

func cmdResolve(args []string) error {
	flags := cmdFlags.New()
	cflags := newClientFlags(flags)
	args = flags.ParseArgs(args)
	id, err := oneArg(args, "bundle identifier")
	if err != nil {
		return err
	}

	s, err := newClientServer(cflags)
	if err != nil {
		return err
	}
	versions, err := s.tree.Versions(id, cflags.lang)
	if err != nil {
		return err
	}
	return printVersions(os.Stdout, versions)
}

func printVersions(w io.Writer, versions []*appdir.Version) error {
	for _, v := range versions {
		restricted, err := access.IsRestricted(v.Files.Restriction())
		if err != nil {
			return errcode.Annotatef(err, "check restriction of %q", v.Label)
		}
		fmt.Fprintf(
			w, "%s  %s  restricted=%t\n",
			v.Label, v.Files.Platform(), restricted,
		)
	}

	display, err := appdir.ForDisplay(versions)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "delivery:", versionLabel(appdir.ForDelivery(versions)))
	fmt.Fprintln(w, "display:", versionLabel(display))
	return nil
}

func cmdCheckAccess(args []string) error {
	flags := cmdFlags.New()
	cflags := newClientFlags(flags)
	device := flags.String("udid", "", "device identity")
	args = flags.ParseArgs(args)
	id, err := oneArg(args, "bundle identifier")
	if err != nil {
		return err
	}

	s, err := newClientServer(cflags)
	if err != nil {
		return err
	}
	versions, err := s.tree.Versions(id, cflags.lang)
	if err != nil {
		return err
	}
	v := appdir.ForDelivery(versions)
	if v == nil {
		return errcode.NotFoundf("app %q has no deliverable version", id)
	}
	ok, err := s.access.IsAllowed(v.Files.Restriction(), *device)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s: allowed=%t\n", id, v.Label, ok)
	return nil
}

func cmdCheckAuthCode(args []string) error {
	flags := cmdFlags.New()
	cflags := newClientFlags(flags)
	device := flags.String("udid", "", "device identity")
	args = flags.ParseArgs(args)
	code, err := oneArg(args, "auth code")
	if err != nil {
		return err
	}

	s, err := newClientServer(cflags)
	if err != nil {
		return err
	}
	if s.config.AuthSecret == "" {
		return errcode.InvalidArgf("auth secret not configured")
	}
	if *device == "" {
		return errcode.InvalidArgf("device identity missing")
	}
	ok := delivery.ValidateAuthCode(
		s.config.AuthSecret, *device, code, time.Now(),
	)
	fmt.Println("valid:", ok)
	return nil
}
