package appclient

import (
	"context"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
)

// Merge policy: nothing is written locally before the server confirms, and
// the server-returned values always overwrite the local guess. Each method
// patches only the slice its mutation touched.

type createEquipmentResponse struct {
	Item     models.Equipment `json:"item"`
	Category string           `json:"category"`
}

func (c *Client) CreateEquipment(ctx context.Context, id, location, category string) (*models.Equipment, error) {
	if err := c.guardMutation(); err != nil {
		return nil, err
	}

	body := map[string]string{"id": id, "location": location, "category": category}
	var resp createEquipmentResponse
	if err := c.do(ctx, "POST", "/api/equipment", body, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.EquipmentData {
		if c.data.EquipmentData[i].Name == resp.Category {
			c.data.EquipmentData[i].Items = append(c.data.EquipmentData[i].Items, resp.Item)
			break
		}
	}
	return &resp.Item, nil
}

func (c *Client) DeleteEquipment(ctx context.Context, id string) error {
	if err := c.guardMutation(); err != nil {
		return err
	}

	if err := c.do(ctx, "DELETE", "/api/equipment/"+id, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.EquipmentData {
		items := c.data.EquipmentData[i].Items
		for j := range items {
			if items[j].ID == id {
				c.data.EquipmentData[i].Items = append(items[:j:j], items[j+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*models.EquipmentCategory, error) {
	if err := c.guardMutation(); err != nil {
		return nil, err
	}

	var cat models.EquipmentCategory
	if err := c.do(ctx, "POST", "/api/categories", map[string]string{"name": name}, &cat); err != nil {
		return nil, err
	}
	if cat.Items == nil {
		cat.Items = []models.Equipment{}
	}

	c.mu.Lock()
	c.data.EquipmentData = append(c.data.EquipmentData, cat)
	c.mu.Unlock()
	return &cat, nil
}

type submitInspectionResponse struct {
	Message          string                  `json:"message"`
	SavedInspection  models.InspectionRecord `json:"savedInspection"`
	UpdatedEquipment models.Equipment        `json:"updatedEquipment"`
}

// SubmitInspection posts the checklist verdict and applies the server's
// delta: one appended history record plus the replaced equipment item.
func (c *Client) SubmitInspection(ctx context.Context, in models.InspectionInput) (*models.InspectionRecord, *models.Equipment, error) {
	if err := c.guardMutation(); err != nil {
		return nil, nil, err
	}

	var resp submitInspectionResponse
	if err := c.do(ctx, "POST", "/api/inspections", in, &resp); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.InspectionHistory = append(c.data.InspectionHistory, resp.SavedInspection)
	for i := range c.data.EquipmentData {
		items := c.data.EquipmentData[i].Items
		for j := range items {
			if items[j].ID == resp.UpdatedEquipment.ID {
				items[j] = resp.UpdatedEquipment
			}
		}
	}
	return &resp.SavedInspection, &resp.UpdatedEquipment, nil
}

// UpdateClientFields patches floorPlanUrl/coverImageUrl. Fields left nil are
// not sent.
func (c *Client) UpdateClientFields(ctx context.Context, floorPlanURL, coverImageURL *string) (*models.Client, error) {
	if err := c.guardMutation(); err != nil {
		return nil, err
	}

	body := map[string]any{}
	if floorPlanURL != nil {
		body["floorPlanUrl"] = *floorPlanURL
	}
	if coverImageURL != nil {
		body["coverImageUrl"] = *coverImageURL
	}

	var updated models.Client
	if err := c.do(ctx, "PATCH", "/api/client", body, &updated); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.data.Client = updated
	c.mu.Unlock()
	return &updated, nil
}

func (c *Client) UpdateInspectionSchedule(ctx context.Context, date, timeOfDay string) (*models.InspectionSchedule, error) {
	if err := c.guardMutation(); err != nil {
		return nil, err
	}

	body := map[string]string{"date": date, "time": timeOfDay}
	var sched models.InspectionSchedule
	if err := c.do(ctx, "PATCH", "/api/inspection", body, &sched); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.data.Inspection = sched
	c.mu.Unlock()
	return &sched, nil
}
