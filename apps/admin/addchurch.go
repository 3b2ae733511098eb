package main

import (
	"context"
	"fmt"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
)

// addChurch registers a new church.Church and prints the slug its
// public registration link will carry.
func (cli *commandLine) addChurch(name, slug string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	if slug == "" {
		slug = church.Slugify(name)
	}
	slug = core.CleanString(slug, true /* lower */)

	if err := cli.churchRepo.CheckSlugUniqueness(ctx, slug, nil); err != nil {
		return err
	}
	ch := church.Church{
		Name: name,
		Slug: slug,
	}
	ch.SetActive(true)
	ch, err := cli.churchRepo.CreateChurch(ctx, ch)
	if err != nil {
		return err
	}
	fmt.Printf("Church %q created with slug %q\n", ch.Name, ch.Slug)
	return nil
}
