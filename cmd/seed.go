package cmd

import (
	"fmt"

	"book-manager/catalog"

	"github.com/spf13/cobra"
)

// sampleBooks is the starter catalog for empty installations.
var sampleBooks = []catalog.FormDraft{
	{Title: "1984", Author: "George Orwell", ISBN: "9780451524935"},
	{Title: "Animal Farm", Author: "George Orwell", ISBN: "9780451526342"},
	{Title: "The Diary of a Young Girl", Author: "Anne Frank", ISBN: "9780553296983"},
	{Title: "The Art of War", Author: "Sun Tzu", ISBN: "9781590302255"},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227"},
	{Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", ISBN: "9780547928210"},
	{Title: "The Two Towers", Author: "J.R.R. Tolkien", ISBN: "9780547928203"},
	{Title: "The Return of the King", Author: "J.R.R. Tolkien", ISBN: "9780547928197"},
	{Title: "Romeo and Juliet", Author: "William Shakespeare", ISBN: "9780743477116"},
	{Title: "The Three Musketeers", Author: "Alexandre Dumas", ISBN: "9780140367470"},
}

// newSeedCmd bulk-creates the sample catalog through the repository
// client.
func newSeedCmd(apiURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill the remote catalog with a sample book list",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := catalog.NewClient(resolve(*apiURL, "BOOKS_API_URL", defaultAPIURL))

			fmt.Println("Importing sample books...")
			successCount := 0
			errorCount := 0
			for _, draft := range sampleBooks {
				fmt.Printf("Importing: %s by %s... ", draft.Title, draft.Author)
				created, err := client.Create(cmd.Context(), draft)
				if err != nil {
					fmt.Printf("ERROR - %v\n", err)
					errorCount++
					continue
				}
				if created.ID != 0 {
					fmt.Printf("SUCCESS (ID: %d)\n", created.ID)
				} else {
					fmt.Println("SUCCESS")
				}
				successCount++
			}

			fmt.Printf("\nImport complete!\n")
			fmt.Printf("Successfully imported: %d books\n", successCount)
			fmt.Printf("Errors: %d\n", errorCount)

			books, err := client.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list after import: %w", err)
			}
			fmt.Printf("Catalog now holds %d book(s).\n", len(books))
			return nil
		},
	}
}
