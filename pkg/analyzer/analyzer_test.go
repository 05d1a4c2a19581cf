package analyzer_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

func TestAnalyze_SelectAndFrom(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		columns []string
		sources []string
	}{
		{
			name:    "wildcard",
			sql:     "SELECT * FROM table;",
			columns: []string{"*"},
			sources: []string{"table"},
		},
		{
			name:    "alias",
			sql:     "SELECT email AS usravatar FROM table;",
			columns: []string{"email AS usravatar"},
			sources: []string{"table"},
		},
		{
			name:    "backtick quoted column",
			sql:     "SELECT `user.email` FROM users;",
			columns: []string{"user.email"},
			sources: []string{"users"},
		},
		{
			name:    "backtick quoted column with space",
			sql:     "SELECT `first name` FROM t;",
			columns: []string{"first name"},
			sources: []string{"t"},
		},
		{
			name:    "backtick quoted column with dash",
			sql:     "SELECT `order-date`, id FROM t;",
			columns: []string{"order-date", "id"},
			sources: []string{"t"},
		},
		{
			name:    "backtick quoted source",
			sql:     "SELECT id FROM `order items`;",
			columns: []string{"id"},
			sources: []string{"order items"},
		},
		{
			name:    "multi column multi table",
			sql:     "SELECT a, b FROM x, y;",
			columns: []string{"a", "b"},
			sources: []string{"x", "y"},
		},
		{
			name:    "whitespace runs",
			sql:     "SELECT    `user.email`   ,    user.avatar AS usravatar,  user.id,  user.address    FROM users ;",
			columns: []string{"user.email", "user.avatar AS usravatar", "user.id", "user.address"},
			sources: []string{"users"},
		},
		{
			name:    "qualified source",
			sql:     "SELECT id FROM shop.orders;",
			columns: []string{"id"},
			sources: []string{"shop.orders"},
		},
		{
			name:    "nested select is flattened",
			sql:     "SELECT a FROM (SELECT b, c FROM d, e), f;",
			columns: []string{"a", "b", "c"},
			sources: []string{"d", "e", "f"},
		},
		{
			name:    "nested wildcard",
			sql:     "SELECT a FROM ( SELECT * FROM inner_t ) ;",
			columns: []string{"a", "*"},
			sources: []string{"inner_t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := analyzer.Analyze(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, stmt.Columns)
			assert.Equal(t, tt.sources, stmt.FromSources)
			assert.Empty(t, stmt.Joins)
			assert.False(t, stmt.HasWhere())
			assert.Nil(t, stmt.Limit)
		})
	}
}

func TestAnalyze_Joins(t *testing.T) {
	t.Run("single left join", func(t *testing.T) {
		stmt, err := analyzer.Analyze("SELECT * FROM users LEFT JOIN messages ON messages.user_id = user.id ;")
		require.NoError(t, err)
		require.Len(t, stmt.Joins, 1)
		assert.Equal(t, analyzer.Join{
			Kind:     analyzer.JoinLeft,
			Table:    "messages",
			LeftKey:  "messages.user_id",
			RightKey: "user.id",
		}, stmt.Joins[0])
	})

	t.Run("joins keep source order and LIMIT still parses", func(t *testing.T) {
		sql := "SELECT * FROM u INNER JOIN a ON a.id = u.id RIGHT JOIN b ON b.id=u.id " +
			"FULL OUTER JOIN c ON c.id  =  u.id LIMIT 3;"
		stmt, err := analyzer.Analyze(sql)
		require.NoError(t, err)
		assert.Equal(t, []analyzer.Join{
			{Kind: analyzer.JoinInner, Table: "a", LeftKey: "a.id", RightKey: "u.id"},
			{Kind: analyzer.JoinRight, Table: "b", LeftKey: "b.id", RightKey: "u.id"},
			{Kind: analyzer.JoinFullOuter, Table: "c", LeftKey: "c.id", RightKey: "u.id"},
		}, stmt.Joins)
		require.NotNil(t, stmt.Limit)
		assert.Equal(t, 3, stmt.Limit.Count)
	})
}

func TestAnalyze_Where(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		where string
	}{
		{"less than", "SELECT * FROM users WHERE user.created_at < 10 ;", "user.created_at LESS_THAN 44 10"},
		{"no spaces around comparator", "SELECT id FROM t WHERE a<=b;", "a LESS_THAN_OR_EQUAL_TO 26 b"},
		{"greater or equal with arithmetic", "SELECT id FROM t WHERE (a + 1) * 2 >= 10;", "a+1*2 GREATER_THAN_OR_EQUAL_TO 38 10"},
		{"parenthesized operand", "SELECT id FROM t WHERE (price) = 2;", "price EQUAL 33 2"},
		{"between", "SELECT `user.email`, user.avatar AS usravatar FROM users WHERE  users.id  BETWEEN 50 AND 100 ;", "users.id BETWEEN 82 50 100"},
		{"not between", "SELECT id FROM users WHERE id NOT BETWEEN 1 AND 5;", "id NOT BETWEEN 42 1 5"},
		{"or", "SELECT id FROM users WHERE id = 1 OR name = 'Lux';", "id EQUAL 32 1 OR 34 name EQUAL 44 'Lux'"},
		{"and binds before or", "SELECT id FROM t WHERE a = 1 AND b != 2 OR c <> 3;", "a EQUAL 27 1 AND 29 b NOT_EQUAL 38 2 OR 40 c NOT_EQUAL 48 3"},
		{"in list", "SELECT id FROM t WHERE id IN (1, 2, 3);", "id IN 29 (1, 2, 3)"},
		{"not in list", "SELECT id FROM t WHERE id NOT IN ('a','b');", "id NOT IN 33 ('a', 'b')"},
		{"like", "SELECT id FROM t WHERE name LIKE 'Lu%';", "name LIKE 33 'Lu%'"},
		{"not like", "SELECT id FROM t WHERE name NOT LIKE 'Lu%';", "name NOT LIKE 37 'Lu%'"},
		{"is null", "SELECT id FROM t WHERE deleted_at IS NULL;", "deleted_at IS 37 NULL"},
		{"is not null", "SELECT id FROM t WHERE deleted_at IS NOT NULL;", "deleted_at IS NOT 41 NULL"},
		{"not prefix", "SELECT id FROM t WHERE NOT a = 1;", "NOT a EQUAL 31 1"},
		{"parenthesized expression", "SELECT id FROM t WHERE (a = 1 OR b = 2) AND c = 3;", "(a EQUAL 28 1 OR 30 b EQUAL 37 2) AND 40 c EQUAL 48 3"},
		{"concatenation", "SELECT id FROM t WHERE first || last = 'ab';", "first||last EQUAL 39 'ab'"},
		{"row value", "SELECT id FROM t WHERE (1, 2) = pair;", "(1, 2) EQUAL 32 pair"},
		{"bare operands", "SELECT id FROM t WHERE active AND TRUE;", "active AND 30 TRUE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := analyzer.Analyze(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.where, stmt.Where)
		})
	}
}

func TestAnalyze_ComparatorNames(t *testing.T) {
	ops := map[string]string{
		"=":  "EQUAL",
		"!=": "NOT_EQUAL",
		"<>": "NOT_EQUAL",
		"<":  "LESS_THAN",
		"<=": "LESS_THAN_OR_EQUAL_TO",
		">":  "GREATER_THAN",
		">=": "GREATER_THAN_OR_EQUAL_TO",
	}
	for op, name := range ops {
		t.Run(name+" "+op, func(t *testing.T) {
			// "SELECT * FROM t WHERE x " is 24 bytes; the right operand starts
			// one space after the operator.
			sql := "SELECT * FROM t WHERE x " + op + " 7;"
			stmt, err := analyzer.Analyze(sql)
			require.NoError(t, err)
			pos := 24 + len(op) + 1
			assert.Equal(t, "x "+name+" "+itoa(pos)+" 7", stmt.Where)
		})
	}
}

func TestAnalyze_TrailingClauses(t *testing.T) {
	t.Run("order by with direction", func(t *testing.T) {
		sql := "SELECT    `user.email`   ,    user.avatar AS usravatar,  user.id,  user.address    FROM users ORDER BY  user.address  ASC ;"
		stmt, err := analyzer.Analyze(sql)
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY 94 user.address ASC", stmt.OrderBy)
	})

	t.Run("group by order by limit", func(t *testing.T) {
		stmt, err := analyzer.Analyze("SELECT city FROM users GROUP BY city ORDER BY 1, city DESC LIMIT 5;")
		require.NoError(t, err)
		assert.Equal(t, "GROUP BY 23 city", stmt.GroupBy)
		assert.Equal(t, "ORDER BY 37 1, city DESC", stmt.OrderBy)
		assert.Equal(t, &analyzer.Limit{Count: 5, Offset: 0, StartPos: 59}, stmt.Limit)
	})

	limits := []struct {
		name   string
		sql    string
		count  int
		offset int
	}{
		{"limit only", "SELECT * FROM t LIMIT 20;", 20, 0},
		{"limit offset keyword", "SELECT * FROM t LIMIT 20 OFFSET 10;", 20, 10},
		{"limit comma offset", "SELECT * FROM t LIMIT 20, 10;", 20, 10},
		{"limit spaced", "SELECT * FROM t LIMIT   20  ,  10   ;", 20, 10},
	}
	for _, tt := range limits {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := analyzer.Analyze(tt.sql)
			require.NoError(t, err)
			require.NotNil(t, stmt.Limit)
			assert.Equal(t, tt.count, stmt.Limit.Count)
			assert.Equal(t, tt.offset, stmt.Limit.Offset)
			assert.Equal(t, 16, stmt.Limit.StartPos)
		})
	}
}

func TestAnalyze_FullStatement(t *testing.T) {
	sql := "SELECT u.id, u.name AS who FROM users LEFT JOIN orders ON orders.user_id = u.id " +
		"WHERE u.age >= 18 AND orders.total BETWEEN 10 AND 20 GROUP BY u.id ORDER BY u.id DESC LIMIT 10 OFFSET 5;"
	stmt, err := analyzer.Analyze(sql)
	require.NoError(t, err)

	assert.Equal(t, []string{"u.id", "u.name AS who"}, stmt.Columns)
	assert.Equal(t, []string{"users"}, stmt.FromSources)
	require.Len(t, stmt.Joins, 1)
	assert.Equal(t, analyzer.JoinLeft, stmt.Joins[0].Kind)
	assert.Contains(t, stmt.Where, "u.age GREATER_THAN_OR_EQUAL_TO")
	assert.Contains(t, stmt.Where, "orders.total BETWEEN")
	assert.Contains(t, stmt.GroupBy, "u.id")
	assert.Contains(t, stmt.OrderBy, "DESC")
	assert.Equal(t, 10, stmt.Limit.Count)
	assert.Equal(t, 5, stmt.Limit.Offset)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		kind     analyzer.ErrorKind
		sentinel error
		pos      int
	}{
		{"empty input", "", analyzer.KindEmptyInput, analyzer.ErrEmptyInput, -1},
		{"only spaces", "   ", analyzer.KindEmptyInput, analyzer.ErrEmptyInput, -1},
		{"missing terminator", "SELECT * FROM t", analyzer.KindMissingTerminator, analyzer.ErrMissingTerminator, -1},
		{"misspelled keyword", "SLECT ;", analyzer.KindInvalidToken, analyzer.ErrInvalidToken, 1},
		{"unclosed backtick", "SELECT `email ;", analyzer.KindUnclosedQuote, analyzer.ErrUnclosedQuote, 13},
		{"unclosed backtick with dash", "SELECT `order-date FROM t;", analyzer.KindUnclosedQuote, analyzer.ErrUnclosedQuote, 13},
		{"empty backticks", "SELECT `` FROM t;", analyzer.KindInvalidToken, analyzer.ErrInvalidToken, 8},
		{"string as column", "SELECT 'user.email' AS useremail FROM table;", analyzer.KindInvalidToken, analyzer.ErrInvalidToken, 7},
		{"wildcard without space", "SELECT *FROM t;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 8},
		{"unclosed string", "SELECT id FROM t WHERE name = 'Lux;", analyzer.KindUnclosedString, analyzer.ErrUnclosedString, 30},
		{"number glued to letters", "SELECT id FROM t LIMIT 10abc;", analyzer.KindInvalidNumber, analyzer.ErrInvalidNumber, 23},
		{"limit without number", "SELECT id FROM t LIMIT x;", analyzer.KindInvalidNumber, analyzer.ErrInvalidNumber, 23},
		{"in list missing close", "SELECT id FROM t WHERE id IN (1 2);", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 32},
		{"row value missing comma", "SELECT id FROM t WHERE x = (1 2);", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 30},
		{"join missing ON", "SELECT * FROM a LEFT JOIN b a.id = b.id;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 28},
		{"join missing equals", "SELECT * FROM a LEFT JOIN b ON a.id b.id;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 36},
		{"trailing garbage", "SELECT * FROM t x;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 16},
		{"nested select not closed", "SELECT a FROM (SELECT b FROM c;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 30},
		{"dangling NOT", "SELECT * FROM t WHERE a NOT b;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 28},
		{"IS without NULL", "SELECT id FROM t WHERE a IS b;", analyzer.KindExpectedToken, analyzer.ErrExpectedToken, 28},
		{"missing FROM", "SELECT a WHERE;", analyzer.KindInvalidToken, analyzer.ErrInvalidToken, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := analyzer.Analyze(tt.sql)
			require.Error(t, err)
			assert.Nil(t, stmt)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			var perr *analyzer.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.pos, perr.Pos)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := analyzer.Analyze("SLECT ;")
	require.Error(t, err)
	assert.Equal(t, "invalid character 'L' at position 1", err.Error())

	_, err = analyzer.Analyze("SELECT * FROM a LEFT JOIN b a.id = b.id;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ON")
}

func TestAnalyzer_Idempotent(t *testing.T) {
	sql := "SELECT a, b FROM x LEFT JOIN y ON y.a = x.a WHERE a > 1 OR b IN (1, 2) LIMIT 4;"
	a := analyzer.New(sql)

	first, err := a.Analyze()
	require.NoError(t, err)
	second, err := a.Analyze()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := analyzer.Analyze(sql)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestAnalyzer_IndependentInstances(t *testing.T) {
	statements := []string{
		"SELECT * FROM a;",
		"SELECT b FROM c WHERE d = 1;",
		"SELECT e FROM f ORDER BY e;",
	}

	var wg sync.WaitGroup
	results := make([]*analyzer.Statement, len(statements))
	for i, sql := range statements {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stmt, err := analyzer.Analyze(sql)
			if err == nil {
				results[i] = stmt
			}
		}()
	}
	wg.Wait()

	for i := range statements {
		require.NotNil(t, results[i], statements[i])
	}
	assert.Equal(t, []string{"*"}, results[0].Columns)
	assert.Equal(t, "d EQUAL 26 1", results[1].Where)
	assert.Equal(t, "ORDER BY 16 e", results[2].OrderBy)
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}
