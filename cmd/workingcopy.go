package cmd

import (
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "working copy commands",
}

func init() {
	rootCmd.AddCommand(copyCmd)
	copyCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	copyCmd.AddCommand(createCopyCmd())
	copyCmd.AddCommand(editCopyCmd())
	copyCmd.AddCommand(submitCopyCmd())
	copyCmd.AddCommand(decideCopyCmd())
	copyCmd.AddCommand(discardCopyCmd())
	copyCmd.AddCommand(diffCopyCmd())
}

type workingCopyPayload struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Revision    int64  `json:"revision"`
	IsSubmitted bool   `json:"is_submitted"`
}

func createCopyCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "branch a working copy off a document",
		Example: "sopflow copy create -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var copy workingCopyPayload
			err := call(http.MethodPost, "/v1/working-copies", map[string]string{
				"document_id": docID,
			}, &copy)
			if err != nil {
				fail(err)
				return
			}

			logrus.Infof("working copy created with id: %s", copy.ID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().SortFlags = false

	return command
}

func editCopyCmd() *cobra.Command {
	var copyID string
	var content string
	var title string
	var revision int64

	var required = []string{"copy-id"}

	command := &cobra.Command{
		Use:     "edit",
		Short:   "edit a working copy",
		Example: "sopflow copy edit -w <copy-id> -c <content> -v <revision>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			body := map[string]interface{}{"revision": revision}
			if content != "" {
				body["content"] = content
			}
			if title != "" {
				body["title"] = title
			}

			var copy workingCopyPayload
			if err := call(http.MethodPatch, "/v1/working-copies/"+copyID, body, &copy); err != nil {
				fail(err)
				return
			}

			logrus.Infof("working copy %s updated to revision %d", copy.ID, copy.Revision)
		},
	}

	command.Flags().StringVarP(&copyID, "copy-id", "w", "", "working copy id (required)")
	command.Flags().StringVarP(&content, "content", "c", "", "new content")
	command.Flags().StringVarP(&title, "title", "t", "", "new title")
	command.Flags().Int64VarP(&revision, "revision", "v", 0, "revision last read")
	command.Flags().SortFlags = false

	return command
}

func submitCopyCmd() *cobra.Command {
	var copyID string
	var reviewers []string
	var summary string

	var required = []string{"copy-id", "reviewer"}

	command := &cobra.Command{
		Use:     "submit",
		Short:   "submit a working copy for review",
		Example: "sopflow copy submit -w <copy-id> -r <reviewer-id> -s <summary>",
		Run: func(cmd *cobra.Command, args []string) {
			if copyID == "" || len(reviewers) == 0 {
				logrus.Errorf("missing required flags: %s", strings.Join(required, ", "))
				return
			}

			var copy workingCopyPayload
			err := call(http.MethodPost, "/v1/working-copies/"+copyID+"/submit", map[string]interface{}{
				"reviewer_ids": reviewers,
				"summary":      summary,
			}, &copy)
			if err != nil {
				fail(err)
				return
			}

			logrus.Infof("working copy %s submitted to %d reviewers", copy.ID, len(reviewers))
		},
	}

	command.Flags().StringVarP(&copyID, "copy-id", "w", "", "working copy id (required)")
	command.Flags().StringArrayVarP(&reviewers, "reviewer", "r", nil, "reviewer user id (repeatable, required)")
	command.Flags().StringVarP(&summary, "summary", "s", "", "change summary")
	command.Flags().SortFlags = false

	return command
}

func decideCopyCmd() *cobra.Command {
	var copyID string
	var reviewID string
	var status string
	var comments string

	var required = []string{"copy-id", "review-id", "status"}

	command := &cobra.Command{
		Use:     "decide",
		Short:   "record a review decision",
		Example: "sopflow copy decide -w <copy-id> -r <review-id> --status approved",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var review struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			err := call(http.MethodPost, "/v1/working-copies/"+copyID+"/reviews/"+reviewID+"/decision", map[string]string{
				"status":   status,
				"comments": comments,
			}, &review)
			if err != nil {
				fail(err)
				return
			}

			logrus.Infof("review %s recorded as %s", review.ID, review.Status)
		},
	}

	command.Flags().StringVarP(&copyID, "copy-id", "w", "", "working copy id (required)")
	command.Flags().StringVarP(&reviewID, "review-id", "r", "", "review id (required)")
	command.Flags().StringVarP(&status, "status", "u", "", "approved, rejected or changes_requested (required)")
	command.Flags().StringVarP(&comments, "comments", "c", "", "review comments")
	command.Flags().SortFlags = false

	return command
}

func discardCopyCmd() *cobra.Command {
	var copyID string

	var required = []string{"copy-id"}

	command := &cobra.Command{
		Use:     "discard",
		Short:   "discard a working copy",
		Example: "sopflow copy discard -w <copy-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if err := call(http.MethodDelete, "/v1/working-copies/"+copyID, nil, nil); err != nil {
				fail(err)
				return
			}

			logrus.Infof("working copy %s discarded", copyID)
		},
	}

	command.Flags().StringVarP(&copyID, "copy-id", "w", "", "working copy id (required)")
	command.Flags().SortFlags = false

	return command
}

func diffCopyCmd() *cobra.Command {
	var copyID string

	var required = []string{"copy-id"}

	command := &cobra.Command{
		Use:     "diff",
		Short:   "preview the changes of a working copy",
		Example: "sopflow copy diff -w <copy-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var res struct {
				Lines []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"lines"`
			}
			if err := call(http.MethodGet, "/v1/working-copies/"+copyID+"/diff", nil, &res); err != nil {
				fail(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			for _, line := range res.Lines {
				switch line.Type {
				case "added":
					table.Append([]string{color.GreenString("+"), line.Text})
				case "removed":
					table.Append([]string{color.RedString("-"), line.Text})
				default:
					table.Append([]string{" ", line.Text})
				}
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&copyID, "copy-id", "w", "", "working copy id (required)")
	command.Flags().SortFlags = false

	return command
}
