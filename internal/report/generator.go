package report

import (
	"fmt"
	"io"
	"time"

	"rental-backend/internal/models"
)

const (
	TitleContracts = "ОТЧЁТ ПО ДОГОВОРАМ АРЕНДЫ"
	TitleCars      = "ОТЧЁТ ПО АВТОМОБИЛЯМ"

	EmptyContracts = "Договоры отсутствуют"
	EmptyCars      = "Автомобили отсутствуют"

	contractBlockHeight = 160.0
	carBlockHeight      = 135.0
	blockGap            = 20.0

	blockLeft    = 35.0
	textLeft     = 45.0
	cornerRadius = 10.0
)

// Generator lays out reports from fully loaded records. It performs no data access.
type Generator struct {
	NewCanvas func() (Canvas, error)
	Now       func() time.Time
	Location  *time.Location
}

func NewGenerator(fontPath string, loc *time.Location) *Generator {
	return &Generator{
		NewCanvas: func() (Canvas, error) { return NewPDFCanvas(fontPath) },
		Now:       time.Now,
		Location:  loc,
	}
}

func (g *Generator) now() time.Time {
	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return now().In(loc)
}

// page tracks the cursor of a document being laid out.
type page struct {
	c Canvas
	y float64
}

// ensure starts a new page when a block of height h no longer fits.
func (p *page) ensure(h float64) {
	if p.y+h > PageHeight-BottomMargin {
		p.c.AddPage()
		p.y = TopMargin
	}
}

func (g *Generator) begin(title string) (*page, error) {
	c, err := g.NewCanvas()
	if err != nil {
		return nil, err
	}
	c.AddPage()
	p := &page{c: c, y: TopMargin}

	c.SetFontSize(11)
	c.TextCentered(PageWidth/2, p.y, title)
	p.y += 25
	c.SetFontSize(9)
	c.TextCentered(PageWidth/2, p.y, "Сформировано: "+g.now().Format("02.01.2006 15:04"))
	c.SetFontSize(11)
	p.y += 25
	return p, nil
}

// Contracts writes the contract report. Contracts are printed in the given order.
func (g *Generator) Contracts(w io.Writer, contracts []models.Contract) error {
	p, err := g.begin(TitleContracts)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		p.c.Text(40, p.y, EmptyContracts)
		return p.c.Finish(w)
	}

	today := models.DateOf(g.now())
	for i := range contracts {
		if err := g.contractBlock(p, &contracts[i], today); err != nil {
			return err
		}
	}
	return p.c.Finish(w)
}

func (g *Generator) contractBlock(p *page, ct *models.Contract, today time.Time) error {
	if ct.Client == nil || ct.Car == nil || ct.Status == nil || ct.IssueBranch == nil || ct.ReturnBranch == nil {
		return fmt.Errorf("contract %d: related records not loaded", ct.ID)
	}
	p.ensure(contractBlockHeight)
	c, y := p.c, p.y

	c.RoundedRect(blockLeft, y, PageWidth-2*blockLeft, contractBlockHeight, cornerRadius)
	c.SetFontSize(10)
	c.Text(textLeft, y+18, fmt.Sprintf("ДОГОВОР № %d", ct.ID))
	c.TextRight(PageWidth-textLeft, y+18, ContractStatusText(ct.Status.Status, ct.ReturnDate, today))
	c.Line(textLeft, y+26, PageWidth-textLeft, y+26)

	c.SetFontSize(11)
	ty := y + 45
	lines := []struct {
		text string
		step float64
	}{
		{"Клиент: " + ct.Client.FullName, 16},
		{fmt.Sprintf("Авто: %s   |   Гос. номер: %s", ct.Car.Title(), ct.Car.Plate), 16},
		{"VIN: " + ct.Car.VIN, 16},
		{fmt.Sprintf("Период: %s — %s", FormatDate(ct.IssueDate), FormatDate(ct.ReturnDate)), 16},
		{"Филиал выдачи: " + ct.IssueBranch.Name, 14},
		{"Филиал возврата: " + ct.ReturnBranch.Name, 16},
		{fmt.Sprintf("Оплата: %s   |   Статус БД: %s", ct.Payment, ct.Status.Status), 16},
		{fmt.Sprintf("Цена/сутки: %s   |   Итог: %s", FormatMoney(ct.DailyPrice), FormatMoney(ct.TotalAmount)), 0},
	}
	for _, l := range lines {
		c.Text(textLeft, ty, l.text)
		ty += l.step
	}

	p.y += contractBlockHeight + blockGap
	return nil
}

// Cars writes the fleet report. Cars are printed in the given order.
func (g *Generator) Cars(w io.Writer, cars []models.Car) error {
	p, err := g.begin(TitleCars)
	if err != nil {
		return err
	}
	if len(cars) == 0 {
		p.c.Text(40, p.y, EmptyCars)
		return p.c.Finish(w)
	}

	for i := range cars {
		if err := carBlock(p, &cars[i]); err != nil {
			return err
		}
	}
	return p.c.Finish(w)
}

func carBlock(p *page, car *models.Car) error {
	if car.Category == nil || car.Status == nil || car.Branch == nil {
		return fmt.Errorf("car %d: related records not loaded", car.ID)
	}
	p.ensure(carBlockHeight)
	c, y := p.c, p.y

	c.RoundedRect(blockLeft, y, PageWidth-2*blockLeft, carBlockHeight, cornerRadius)
	c.SetFontSize(10)
	c.Text(textLeft, y+18, car.Title())
	c.TextRight(PageWidth-textLeft, y+18, "Статус: "+CarStatusText(car.Status.Status))
	c.Line(textLeft, y+26, PageWidth-textLeft, y+26)

	c.SetFontSize(11)
	ty := y + 45
	for _, text := range []string{
		fmt.Sprintf("Гос. номер: %s   |   VIN: %s", car.Plate, car.VIN),
		fmt.Sprintf("Категория: %s   |   Филиал: %s", car.Category.Name, car.Branch.Name),
		fmt.Sprintf("Год: %d   |   Пробег: %d км", car.YearMade, car.Mileage),
		"Цена за сутки: " + FormatMoney(car.DailyPrice),
	} {
		c.Text(textLeft, ty, text)
		ty += 16
	}

	p.y += carBlockHeight + blockGap
	return nil
}
