package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/models"
	"github.com/baniakuntest4-alt/arhanud/services"
	"github.com/baniakuntest4-alt/arhanud/utils"
)

type submitRequestDTO struct {
	RequestType string            `json:"request_type" validate:"required,oneof=mutation retirement promotion correction"`
	NRP         string            `json:"nrp" validate:"required"`
	Payload     map[string]string `json:"payload" validate:"required"`
}

func SubmitRequest(c *fiber.Ctx) error {
	var data submitRequestDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	id, err := requestService().Submit(actorFromCtx(c), services.SubmitInput{
		Type:    models.RequestType(data.RequestType),
		NRP:     data.NRP,
		Payload: data.Payload,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "status": models.StatusPending})
}

func ListRequests(c *fiber.Ctx) error {
	filter := services.RequestFilter{
		Status:      models.RequestStatus(c.Query("status")),
		Type:        models.RequestType(c.Query("request_type")),
		NRP:         c.Query("nrp"),
		SubmittedBy: c.Query("submitted_by"),
		Search:      c.Query("search"),
		Page:        utils.ParseIntDefault(c.Query("page"), 0),
		Limit:       utils.ParseIntDefault(c.Query("limit"), 0),
	}

	requests, err := requestService().List(actorFromCtx(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"requests": requests, "message": "success"})
}

func GetRequest(c *fiber.Ctx) error {
	req, err := requestService().Get(actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(req)
}

type verifyRequestDTO struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note"`
}

func VerifyRequest(c *fiber.Ctx) error {
	var data verifyRequestDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	updated, err := requestService().Verify(actorFromCtx(c), c.Params("id"), models.RequestStatus(data.Decision), data.Note)
	if err != nil {
		// A propagation failure still carries the decided request; the error
		// handler reports it as verified-but-needs-attention.
		return err
	}
	return c.JSON(updated)
}
