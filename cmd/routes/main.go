package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"patientdesk/internal/web"
	"patientdesk/internal/web/views"
)

func main() {
	if err := run(os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "routes: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	table, err := web.NewRouteTable(views.DefaultAssets())
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, "PATTERN\tVIEW")
	for _, route := range table.Routes() {
		_, _ = fmt.Fprintf(writer, "%s\t%s\n", route.Pattern, web.ViewName(route.View))
	}
	return writer.Flush()
}
