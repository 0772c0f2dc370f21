package cmd

import (
	"net/http"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "document commands",
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	docCmd.AddCommand(createDocCmd())
	docCmd.AddCommand(getDocCmd())
	docCmd.AddCommand(listDocCmd())
	docCmd.AddCommand(listDocVersionsCmd())
}

type documentPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

func createDocCmd() *cobra.Command {
	var title string
	var content string
	var description string
	var department string

	var required = []string{"title"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Example: "sopflow doc create -t <title> -c <content>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var doc documentPayload
			err := call(http.MethodPost, "/v1/documents", map[string]string{
				"title":       title,
				"content":     content,
				"description": description,
				"department":  department,
			}, &doc)
			if err != nil {
				fail(err)
				return
			}

			logrus.Infof("document created with id: %s at version %s", doc.ID, doc.Version)
		},
	}

	command.Flags().StringVarP(&title, "title", "t", "", "title of the document (required)")
	command.Flags().StringVarP(&content, "content", "c", "", "content of the document")
	command.Flags().StringVarP(&description, "description", "e", "", "description of the document")
	command.Flags().StringVarP(&department, "department", "m", "", "owning department")

	command.Flags().SortFlags = false

	return command
}

func getDocCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a document",
		Example: "sopflow doc get -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var doc documentPayload
			if err := call(http.MethodGet, "/v1/documents/"+docID, nil, &doc); err != nil {
				fail(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Version", "Department", "Priority"})
			table.Append([]string{doc.ID, doc.Version, doc.Department, doc.Priority})
			table.Render()

			printField("Title", doc.Title)
			printField("Content", doc.Content)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().SortFlags = false

	return command
}

func listDocCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "list",
		Short:   "list documents",
		Example: "sopflow doc list",
		Run: func(cmd *cobra.Command, args []string) {
			var res struct {
				Documents []documentPayload `json:"documents"`
				Total     int64             `json:"total"`
			}
			if err := call(http.MethodGet, "/v1/documents", nil, &res); err != nil {
				fail(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Version", "Title"})
			for _, doc := range res.Documents {
				table.Append([]string{doc.ID, doc.Version, doc.Title})
			}
			table.Render()
		},
	}

	return command
}

func listDocVersionsCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "versions",
		Short:   "list archived versions of a document",
		Example: "sopflow doc versions -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var res struct {
				Versions []struct {
					Version   string `json:"version"`
					Summary   string `json:"summary"`
					CreatedBy string `json:"created_by"`
				} `json:"versions"`
			}
			if err := call(http.MethodGet, "/v1/documents/"+docID+"/versions", nil, &res); err != nil {
				fail(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Summary", "Author"})
			for _, v := range res.Versions {
				table.Append([]string{v.Version, v.Summary, v.CreatedBy})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().SortFlags = false

	return command
}

func checkMissingFlags(cmd *cobra.Command, required []string) bool {
	missing := false
	for _, name := range required {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Value.String() == "" {
			logrus.Errorf("missing required flag: --%s", name)
			missing = true
		}
	}

	return missing
}
