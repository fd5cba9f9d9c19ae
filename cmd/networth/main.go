package main

import (
	"bufio"
	"bwtoolkit/api/bwapi"
	"bwtoolkit/networth"
	"bwtoolkit/utils"
	"bwtoolkit/utils/config"
	"bwtoolkit/utils/requests"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Takes the positional arg at i, falling back to the env var and finally a prompt.
func credential(in *bufio.Reader, out io.Writer, i int, env, prompt string) (string, error) {
	if v := strings.TrimSpace(flag.Arg(i)); v != "" {
		return v, nil
	}

	if v, err := config.GetEnviroVar(env); err == nil {
		return v, nil
	}

	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}

	return strings.TrimSpace(line), nil
}

func printReport(out io.Writer, r networth.Report, locale string) {
	fmtNum := func(n int) string { return utils.FormatNumberLocale(n, locale) }

	if r.HasEquipment {
		fmt.Fprintf(out, "The equipment is worth %s credits.\n", fmtNum(r.Equipment))
	} else {
		log.Warn("unable to get equipment")
	}

	if r.HasInventory {
		fmt.Fprintf(out, "The inventory is worth %s credits.\n", fmtNum(r.Inventory))
	} else {
		log.Warn("unable to get inventory")
	}

	fmt.Fprintf(out, "The account has %s raw credits.\n", fmtNum(r.Credits))
	fmt.Fprintf(out, "The account networth is %s credits.\n", fmtNum(r.Total))
}

func main() {
	dump := flag.Bool("dump", false, "print the full report structure instead of the summary")
	locale := flag.String("locale", "en", "locale used to format numbers")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [authId] [apiKey]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load %s: %v", config.DEFAULT_ENV_FILE, err)
	}
	config.ConfigureLogging()

	fmt.Println("Welcome to the Between Worlds networth calculator!")

	in := bufio.NewReader(os.Stdin)
	authID, err := credential(in, os.Stdout, 0, config.ENV_AUTH_ID, "username: ")
	if err != nil {
		log.Fatal(err)
	}

	apiKey, err := credential(in, os.Stdout, 1, config.ENV_API_KEY, "api-key: ")
	if err != nil {
		log.Fatal(err)
	}

	timeoutSecs, err := config.EnviroVarOr(config.ENV_TIMEOUT_SECS, int(requests.DEFAULT_TIMEOUT/time.Second))
	if err != nil {
		log.Fatal(err)
	}

	opts := []bwapi.Option{bwapi.WithTimeout(time.Duration(timeoutSecs) * time.Second)}
	if baseURL, _ := config.EnviroVarOr(config.ENV_BASE_URL, ""); baseURL != "" {
		opts = append(opts, bwapi.WithBaseURL(baseURL))
	}

	client := bwapi.NewClient(authID, apiKey, opts...)

	report, err := networth.Fetch(client, authID)
	if err != nil {
		log.WithField("user", authID).Fatal(err)
	}

	if *dump {
		fmt.Println(utils.Prettify(report))
		return
	}

	printReport(os.Stdout, report, *locale)
}
