package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
)

type insightCommand struct {
	fs  *flag.FlagSet
	run bool
}

func InsightCommand() Command {
	cmd := &insightCommand{
		fs: flag.NewFlagSet("insight", flag.ExitOnError),
	}

	cmd.fs.BoolVar(&cmd.run, "run", false, "Generate automated insights for all active users")

	return cmd
}

func (c *insightCommand) Init(args []string) error {
	return c.fs.Parse(args)
}

func (c *insightCommand) Run() {
	if !c.run {
		fmt.Println("Missing run flag")
		c.fs.Usage()
		return
	}

	if err := runInsights(); err != nil {
		fmt.Printf("Could not run insight generation: %v\n", err)
	}
}

func (c *insightCommand) Name() string {
	return c.fs.Name()
}

func (c *insightCommand) Description() string {
	return "Trigger automated insight generation"
}

func runInsights() error {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/admin/v1/insights/run", baseUrl), nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", secret))

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var resBody map[string]any
	if err = json.NewDecoder(res.Body).Decode(&resBody); err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("insight run failed with status %d, and body:\n%v\nMAKE SURE ENV VAR 'CLI_SECRET' IS SET!", res.StatusCode, resBody)
	}

	fmt.Printf("Insight run finished!\nGenerated insights: %v\n", resBody["generated"])

	return nil
}
