package css

const (
	OperatorAtRule       = '@'
	OperatorBlockBegin   = '{'
	OperatorBlockEnd     = '}'
	OperatorRuleEnd      = ';'
	OperatorValueDelim   = ':'
	OperatorSelectorNext = ','
	OperatorStringDelim  = '"'
	OperatorStringDelim2 = '\''
	OperatorEscape       = '\\'

	CommentBegin = "/*"
	CommentEnd   = "*/"

	// Legacy HTML comment markers around embedded style sheets
	CDO = "<!--"
	CDC = "-->"

	Important = "!important"
)
