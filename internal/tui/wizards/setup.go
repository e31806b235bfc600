package wizards

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/camholmes12/pgiamauth/internal/db"
	"github.com/camholmes12/pgiamauth/internal/token"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// ConnectionTester verifies that the collected values can reach the
// database with a freshly minted token.
type ConnectionTester interface {
	TestConnection(ctx context.Context, values SetupValues) (info string, err error)
}

type stackTester struct{}

func (stackTester) TestConnection(ctx context.Context, values SetupValues) (string, error) {
	generator, err := generatorFor(ctx, values)
	if err != nil {
		return "", err
	}
	provider := db.NewPostgresProvider(token.NewCache(generator))

	pool, err := provider.NewPool(ctx, pgiamauth.DriverPostgres, values.Options())
	if err != nil {
		return "", err
	}
	defer pool.Close()

	var version string
	if err := pool.QueryRow(ctx, "select version()").Scan(&version); err != nil {
		return "", err
	}
	if idx := strings.Index(version, ","); idx > 0 {
		version = version[:idx]
	}
	return version, nil
}

func generatorFor(ctx context.Context, values SetupValues) (pgiamauth.TokenGenerator, error) {
	switch values.Provider {
	case providerRDS:
		return token.NewDefaultRDSGenerator(ctx)
	case providerAzure:
		if secret := os.Getenv("AZURE_CLIENT_SECRET"); secret != "" && values.TenantID != "" && values.ClientID != "" {
			return token.NewAzureServicePrincipalGenerator(values.TenantID, values.ClientID, secret)
		}
		return token.NewAzureDefaultGenerator()
	case providerGoogle:
		return token.NewDefaultGoogleGenerator(ctx)
	default:
		return nil, fmt.Errorf("unsupported token provider %q", values.Provider)
	}
}

// WizardOption configures a SetupWizard.
type WizardOption func(*SetupWizard)

// WithTester injects a ConnectionTester (for testing/mocking).
func WithTester(t ConnectionTester) WizardOption {
	return func(w *SetupWizard) {
		w.tester = t
	}
}

// Provider IDs. These match the provider names pgiamauth.yaml accepts.
const (
	providerRDS    = "rds"
	providerAzure  = "azure"
	providerGoogle = "google"
)

// SetupValues holds everything the setup wizard collects.
type SetupValues struct {
	Provider string
	Host     string
	Port     int
	Database string
	User     string
	Region   string // rds only
	TenantID string // azure only, optional
	ClientID string // azure only, optional
}

// URL renders the values as the JDBC URL the provider consumes.
func (v SetupValues) URL() string {
	return fmt.Sprintf("jdbc:postgresql://%s:%d/%s", v.Host, v.Port, v.Database)
}

// Options renders the values as a connection option map with IAM
// authentication requested.
func (v SetupValues) Options() pgiamauth.ConnectionOptions {
	options := pgiamauth.ConnectionOptions{
		pgiamauth.OptionURL:     v.URL(),
		pgiamauth.OptionUser:    v.User,
		pgiamauth.OptionIAMAuth: "true",
	}
	if v.Region != "" {
		options[pgiamauth.OptionRegion] = v.Region
	}
	return options
}

// SetupResult holds the result of the setup wizard.
type SetupResult struct {
	Cancelled bool
	Values    SetupValues
	Tested    bool
}

// Provider represents a cloud hosting the database.
type Provider struct {
	ID          string
	Name        string
	Description string
}

// Available providers.
var providers = []Provider{
	{
		ID:          providerRDS,
		Name:        "AWS RDS / Aurora PostgreSQL",
		Description: "Tokens minted through AWS IAM database authentication",
	},
	{
		ID:          providerAzure,
		Name:        "Azure Database for PostgreSQL",
		Description: "Tokens minted through Microsoft Entra ID",
	},
	{
		ID:          providerGoogle,
		Name:        "Google Cloud SQL / AlloyDB",
		Description: "Tokens minted through Google Cloud IAM",
	},
}

// SetupWizard guides users through setting up IAM database authentication.
type SetupWizard struct {
	// Current step
	step wizardStep

	// Provider selection
	providerIdx int
	provider    *Provider

	// Form inputs
	inputs        []textinput.Model
	focusIndex    int
	validationErr string

	// Connection testing
	spinner  spinner.Model
	testing  bool
	testDone bool
	testOK   bool
	testErr  error
	testInfo string

	// Result
	result SetupResult

	// Dimensions
	width  int
	height int

	// Styles
	styles wizardStyles

	// Key bindings
	keys wizardKeys

	// Connection tester (injectable for testing)
	tester ConnectionTester
}

type wizardStep int

const (
	stepSelectProvider wizardStep = iota
	stepInputRDS
	stepInputAzure
	stepInputGoogle
	stepTestConnection
	stepDone
)

type wizardStyles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Description lipgloss.Style
	Help        lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Box         lipgloss.Style
	Label       lipgloss.Style
	FocusedBox  lipgloss.Style
}

type wizardKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
	Tab    key.Binding
}

func defaultWizardStyles() wizardStyles {
	return wizardStyles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		Subtitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginBottom(1),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Unselected:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginLeft(4),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Box:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FocusedBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1),
	}
}

func defaultWizardKeys() wizardKeys {
	return wizardKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Back:   key.NewBinding(key.WithKeys("esc")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q")),
		Tab:    key.NewBinding(key.WithKeys("tab")),
	}
}

// NewSetupWizard creates a new setup wizard.
func NewSetupWizard(opts ...WizardOption) SetupWizard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	w := SetupWizard{
		step:    stepSelectProvider,
		spinner: s,
		width:   80,
		height:  24,
		styles:  defaultWizardStyles(),
		keys:    defaultWizardKeys(),
		tester:  stackTester{},
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// Init implements tea.Model.
func (w SetupWizard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (w SetupWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		// ctrl+c always quits
		if msg.String() == "ctrl+c" {
			w.result.Cancelled = true
			return w, tea.Quit
		}

		// Step-specific handling
		switch w.step {
		case stepSelectProvider:
			return w.updateProviderSelection(msg)
		case stepInputRDS, stepInputAzure, stepInputGoogle:
			return w.updateInputForm(msg)
		case stepTestConnection:
			return w.updateTestConnection(msg)
		}

	case testResultMsg:
		w.testing = false
		w.testDone = true
		w.testOK = msg.success
		w.testErr = msg.err
		w.testInfo = msg.info
		return w, nil

	case spinner.TickMsg:
		if w.testing {
			var cmd tea.Cmd
			w.spinner, cmd = w.spinner.Update(msg)
			return w, cmd
		}

	default:
		// Forward non-key messages (focus, blink cursor) to active text input
		switch w.step {
		case stepInputRDS, stepInputAzure, stepInputGoogle:
			if w.focusIndex >= 0 && w.focusIndex < len(w.inputs) {
				var cmd tea.Cmd
				w.inputs[w.focusIndex], cmd = w.inputs[w.focusIndex].Update(msg)
				return w, cmd
			}
		}
	}

	return w, nil
}

func (w SetupWizard) updateProviderSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Up):
		if w.providerIdx > 0 {
			w.providerIdx--
		}
	case key.Matches(msg, w.keys.Down):
		if w.providerIdx < len(providers)-1 {
			w.providerIdx++
		}
	case key.Matches(msg, w.keys.Select):
		w.provider = &providers[w.providerIdx]
		w.step = w.getInputStep()
		return w, w.initInputs()
	case key.Matches(msg, w.keys.Back):
		w.result.Cancelled = true
		return w, tea.Quit
	}
	return w, nil
}

func (w *SetupWizard) getInputStep() wizardStep {
	switch w.provider.ID {
	case providerAzure:
		return stepInputAzure
	case providerGoogle:
		return stepInputGoogle
	default:
		return stepInputRDS
	}
}

func (w *SetupWizard) initInputs() tea.Cmd {
	w.inputs = nil
	w.focusIndex = 0

	switch w.step {
	case stepInputRDS:
		w.inputs = w.createRDSInputs()
	case stepInputAzure:
		w.inputs = w.createAzureInputs()
	case stepInputGoogle:
		w.inputs = w.createGoogleInputs()
	}

	if len(w.inputs) > 0 {
		return w.inputs[0].Focus()
	}
	return nil
}

func (w *SetupWizard) createRDSInputs() []textinput.Model {
	host := textinput.New()
	host.Placeholder = "mydb.xxx.us-east-1.rds.amazonaws.com"
	host.CharLimit = 256
	host.Width = 50

	port := textinput.New()
	port.SetValue("5432")
	port.CharLimit = 5
	port.Width = 10

	database := textinput.New()
	database.Placeholder = "mydb"
	database.CharLimit = 64
	database.Width = 40

	username := textinput.New()
	username.Placeholder = "iam_user"
	username.CharLimit = 64
	username.Width = 40

	region := textinput.New()
	region.Placeholder = "us-east-1"
	region.CharLimit = 32
	region.Width = 20

	return []textinput.Model{host, port, database, username, region}
}

func (w *SetupWizard) createAzureInputs() []textinput.Model {
	server := textinput.New()
	server.Placeholder = "myserver.postgres.database.azure.com"
	server.CharLimit = 256
	server.Width = 50

	database := textinput.New()
	database.Placeholder = "mydb"
	database.CharLimit = 64
	database.Width = 40

	username := textinput.New()
	username.Placeholder = "user@example.com"
	username.CharLimit = 128
	username.Width = 40

	tenantID := textinput.New()
	tenantID.Placeholder = "optional"
	tenantID.CharLimit = 64
	tenantID.Width = 40

	clientID := textinput.New()
	clientID.Placeholder = "optional"
	clientID.CharLimit = 64
	clientID.Width = 40

	return []textinput.Model{server, database, username, tenantID, clientID}
}

func (w *SetupWizard) createGoogleInputs() []textinput.Model {
	host := textinput.New()
	host.Placeholder = "10.0.0.3 or cloud-sql hostname"
	host.CharLimit = 256
	host.Width = 50

	port := textinput.New()
	port.SetValue("5432")
	port.CharLimit = 5
	port.Width = 10

	database := textinput.New()
	database.Placeholder = "mydb"
	database.CharLimit = 64
	database.Width = 40

	username := textinput.New()
	username.Placeholder = "sa-name@project.iam"
	username.CharLimit = 128
	username.Width = 50

	return []textinput.Model{host, port, database, username}
}

func (w SetupWizard) updateInputForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Tab), msg.String() == "down":
		if w.focusIndex < len(w.inputs)-1 {
			w.inputs[w.focusIndex].Blur()
			w.focusIndex++
			return w, w.inputs[w.focusIndex].Focus()
		}
	case msg.String() == "shift+tab", msg.String() == "up":
		if w.focusIndex > 0 {
			w.inputs[w.focusIndex].Blur()
			w.focusIndex--
			return w, w.inputs[w.focusIndex].Focus()
		}
	case key.Matches(msg, w.keys.Select):
		// Enter on non-last field advances to next field
		if w.focusIndex < len(w.inputs)-1 {
			w.inputs[w.focusIndex].Blur()
			w.focusIndex++
			return w, w.inputs[w.focusIndex].Focus()
		}
		// Enter on last field submits the form
		if err := w.validateInputs(); err != nil {
			w.validationErr = err.Error()
			return w, nil
		}
		w.validationErr = ""
		w.buildValues()
		w.step = stepTestConnection
		w.testing = true
		w.testDone = false
		return w, tea.Batch(w.spinner.Tick, w.testConnection())
	case key.Matches(msg, w.keys.Back):
		w.step = stepSelectProvider
		return w, nil
	default:
		w.validationErr = ""
		var cmd tea.Cmd
		w.inputs[w.focusIndex], cmd = w.inputs[w.focusIndex].Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *SetupWizard) validateInputs() error {
	switch w.step {
	case stepInputRDS:
		if w.inputs[0].Value() == "" {
			return fmt.Errorf("host is required")
		}
		if w.inputs[2].Value() == "" {
			return fmt.Errorf("database name is required")
		}
		if w.inputs[3].Value() == "" {
			return fmt.Errorf("user is required")
		}
		if w.inputs[4].Value() == "" {
			return fmt.Errorf("region is required")
		}
	case stepInputAzure:
		if w.inputs[0].Value() == "" {
			return fmt.Errorf("server name is required")
		}
		if w.inputs[1].Value() == "" {
			return fmt.Errorf("database name is required")
		}
		if w.inputs[2].Value() == "" {
			return fmt.Errorf("user is required")
		}
	case stepInputGoogle:
		if w.inputs[0].Value() == "" {
			return fmt.Errorf("host is required")
		}
		if w.inputs[2].Value() == "" {
			return fmt.Errorf("database name is required")
		}
		if w.inputs[3].Value() == "" {
			return fmt.Errorf("user is required")
		}
	}
	return nil
}

func (w *SetupWizard) buildValues() {
	values := SetupValues{Provider: w.provider.ID}

	switch w.step {
	case stepInputRDS:
		values.Host = w.inputs[0].Value()
		if port, err := strconv.Atoi(w.inputs[1].Value()); err == nil && port > 0 {
			values.Port = port
		} else {
			values.Port = 5432
		}
		values.Database = w.inputs[2].Value()
		values.User = w.inputs[3].Value()
		values.Region = w.inputs[4].Value()

	case stepInputAzure:
		values.Host = w.inputs[0].Value()
		values.Port = 5432
		values.Database = w.inputs[1].Value()
		values.User = w.inputs[2].Value()
		values.TenantID = w.inputs[3].Value()
		values.ClientID = w.inputs[4].Value()

	case stepInputGoogle:
		values.Host = w.inputs[0].Value()
		if port, err := strconv.Atoi(w.inputs[1].Value()); err == nil && port > 0 {
			values.Port = port
		} else {
			values.Port = 5432
		}
		values.Database = w.inputs[2].Value()
		values.User = w.inputs[3].Value()
	}

	w.result.Values = values
}

type testResultMsg struct {
	success bool
	err     error
	info    string
}

func (w *SetupWizard) testConnection() tea.Cmd {
	values := w.result.Values
	tester := w.tester
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		info, err := tester.TestConnection(ctx, values)
		if err != nil {
			return testResultMsg{success: false, err: err}
		}
		return testResultMsg{success: true, info: info}
	}
}

func (w SetupWizard) updateTestConnection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !w.testDone {
		return w, nil // Still testing
	}

	switch {
	case key.Matches(msg, w.keys.Select):
		if w.testOK {
			w.result.Tested = true
			w.step = stepDone
			return w, tea.Quit
		}
		// Test failed, go back to edit
		w.step = w.getInputStep()
		return w, w.initInputs()
	case key.Matches(msg, w.keys.Back):
		w.step = w.getInputStep()
		return w, w.initInputs()
	case msg.String() == "s":
		// Save without a successful test
		if !w.testOK {
			w.step = stepDone
			return w, tea.Quit
		}
	}
	return w, nil
}

// View implements tea.Model.
func (w SetupWizard) View() string {
	var b strings.Builder

	// Header
	b.WriteString(w.styles.Title.Render("pgiamauth - IAM Connection Setup"))
	b.WriteString("\n")

	switch w.step {
	case stepSelectProvider:
		b.WriteString(w.viewProviderSelection())
	case stepInputRDS:
		b.WriteString(w.viewRDSForm())
	case stepInputAzure:
		b.WriteString(w.viewAzureForm())
	case stepInputGoogle:
		b.WriteString(w.viewGoogleForm())
	case stepTestConnection:
		b.WriteString(w.viewTestConnection())
	}

	return b.String()
}

func (w SetupWizard) viewProviderSelection() string {
	var b strings.Builder

	b.WriteString(w.styles.Subtitle.Render("Which cloud hosts your PostgreSQL server?"))
	b.WriteString("\n\n")

	for i, p := range providers {
		cursor := "  "
		style := w.styles.Unselected
		symbol := "○"

		if i == w.providerIdx {
			cursor = ""
			style = w.styles.Selected
			symbol = "●"
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(symbol + " " + p.Name))
		b.WriteString("\n")
		b.WriteString(w.styles.Description.Render(p.Description))
		b.WriteString("\n")
	}

	b.WriteString(w.styles.Help.Render("\n↑/↓ navigate • enter select • q quit"))

	return b.String()
}

type formConfig struct {
	subtitle    string
	labels      []string
	hints       map[int]string
	description []string
}

func (w SetupWizard) viewForm(fc formConfig) string {
	var b strings.Builder

	b.WriteString(w.styles.Subtitle.Render(fc.subtitle))
	b.WriteString("\n\n")

	for i, input := range w.inputs {
		style := w.styles.Box
		if i == w.focusIndex {
			style = w.styles.FocusedBox
		}
		b.WriteString(w.styles.Label.Render(fc.labels[i]))
		b.WriteString("\n")
		b.WriteString(style.Render(input.View()))
		if hint, ok := fc.hints[i]; ok {
			b.WriteString("\n")
			b.WriteString(w.styles.Description.Render(hint))
		}
		b.WriteString("\n\n")
	}

	for _, desc := range fc.description {
		b.WriteString(w.styles.Description.Render(desc))
		b.WriteString("\n")
	}
	if len(fc.description) > 0 {
		b.WriteString("\n")
	}

	if w.validationErr != "" {
		b.WriteString(w.styles.Error.Render("Error: " + w.validationErr))
		b.WriteString("\n\n")
	}

	b.WriteString(w.styles.Help.Render("tab/↓ next • shift+tab/↑ prev • enter submit • esc back"))

	return b.String()
}

func (w SetupWizard) viewRDSForm() string {
	return w.viewForm(formConfig{
		subtitle: "AWS RDS - IAM Authentication",
		labels:   []string{"Host:", "Port:", "Database:", "User:", "Region:"},
		hints: map[int]string{
			3: "database role with rds_iam granted",
		},
		description: []string{"Tokens are minted with AWS credentials (env vars, shared config, or IAM role)."},
	})
}

func (w SetupWizard) viewAzureForm() string {
	return w.viewForm(formConfig{
		subtitle: "Azure PostgreSQL - Entra ID",
		labels:   []string{"Server:", "Database:", "User:", "Tenant ID:", "Client ID:"},
		hints: map[int]string{
			3: "optional, leave empty for the default credential chain",
			4: "optional, leave empty for the default credential chain",
		},
		description: []string{"Authentication uses az login, managed identity, or AZURE_* environment variables."},
	})
}

func (w SetupWizard) viewGoogleForm() string {
	return w.viewForm(formConfig{
		subtitle: "Google Cloud SQL - IAM",
		labels:   []string{"Host:", "Port:", "Database:", "User:"},
		hints: map[int]string{
			3: "IAM database user, e.g. sa-name@project.iam",
		},
		description: []string{"Authentication uses Application Default Credentials (gcloud or service account)."},
	})
}

func (w SetupWizard) viewTestConnection() string {
	var b strings.Builder

	values := w.result.Values
	target := fmt.Sprintf("%s:%d/%s", values.Host, values.Port, values.Database)

	b.WriteString(w.styles.Subtitle.Render("Testing Connection"))
	b.WriteString("\n\n")

	b.WriteString("Target: ")
	b.WriteString(target)
	b.WriteString("\n\n")

	if w.testing {
		b.WriteString(w.spinner.View())
		b.WriteString(" Minting token and connecting...")
	} else if w.testDone {
		if w.testOK {
			b.WriteString(w.styles.Success.Render("✓ Connected with IAM token"))
			b.WriteString("\n")
			b.WriteString(w.styles.Description.Render(w.testInfo))
			b.WriteString("\n\n")
			b.WriteString(w.styles.Help.Render("enter continue • esc go back"))
		} else {
			b.WriteString(w.styles.Error.Render("✗ Connection failed"))
			b.WriteString("\n")
			errMsg := "unknown error"
			if w.testErr != nil {
				errMsg = w.testErr.Error()
			}
			b.WriteString(w.styles.Description.Render(errMsg))
			b.WriteString("\n\n")
			b.WriteString(w.styles.Help.Render("enter edit values • s save anyway • esc go back"))
		}
	}

	return b.String()
}

// Result returns the wizard result.
func (w SetupWizard) Result() SetupResult {
	return w.result
}

// RunSetupWizard executes the setup wizard and returns the result.
func RunSetupWizard(opts ...WizardOption) (SetupResult, error) {
	wizard := NewSetupWizard(opts...)
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	model, err := p.Run()
	if err != nil {
		return SetupResult{Cancelled: true}, err
	}

	return model.(SetupWizard).Result(), nil
}
