package mock

type resultTableConfig struct {
	columns []string
}

type ResultTableOption func(*resultTableConfig)

func ResultTableWithColumns(columns ...string) ResultTableOption {
	return func(c *resultTableConfig) {
		c.columns = columns
	}
}
