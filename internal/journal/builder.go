package journal

// Builder assembles an Entry field by field. Operations chain only the fields
// they record.
type Builder struct {
	e Entry
}

// New starts an entry with the required timestamp and description.
func New(timestamp int, description string) *Builder {
	return &Builder{e: Entry{Timestamp: timestamp, Description: description}}
}

// Amount sets a numeric amount.
func (b *Builder) Amount(v float64) *Builder { b.e.Amount = v; return b }

// AmountText sets a preformatted amount such as "12.5 USD".
func (b *Builder) AmountText(s string) *Builder { b.e.Amount = s; return b }

func (b *Builder) Currency(c string) *Builder     { b.e.Currency = c; return b }
func (b *Builder) Card(n string) *Builder         { b.e.Card = n; return b }
func (b *Builder) CardHolder(e string) *Builder   { b.e.CardHolder = e; return b }
func (b *Builder) Account(iban string) *Builder   { b.e.Account = iban; return b }
func (b *Builder) AccountIBAN(i string) *Builder  { b.e.AccountIBAN = i; return b }
func (b *Builder) Sender(iban string) *Builder    { b.e.SenderIBAN = iban; return b }
func (b *Builder) Receiver(iban string) *Builder  { b.e.ReceiverIBAN = iban; return b }
func (b *Builder) TransferType(t string) *Builder { b.e.TransferType = t; return b }
func (b *Builder) Merchant(name string) *Builder  { b.e.Merchant = name; return b }
func (b *Builder) NewPlanType(p string) *Builder  { b.e.NewPlanType = p; return b }
func (b *Builder) SplitType(t string) *Builder    { b.e.SplitType = t; return b }
func (b *Builder) Error(msg string) *Builder      { b.e.Error = msg; return b }
func (b *Builder) ClassicIBAN(i string) *Builder  { b.e.ClassicIBAN = i; return b }
func (b *Builder) SavingsIBAN(i string) *Builder  { b.e.SavingsIBAN = i; return b }

func (b *Builder) AmountForUsers(amounts []float64) *Builder {
	b.e.AmountForUsers = amounts
	return b
}

func (b *Builder) InvolvedAccounts(ibans []string) *Builder {
	b.e.InvolvedAccounts = ibans
	return b
}

// Build finalizes the entry.
func (b *Builder) Build() Entry {
	return b.e
}
